package equipment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/txmanager"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock, *dbmetrics.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), mock, wrapped
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM equipment WHERE id = \$1$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(equipmentColumns).
			AddRow(5, "Racket", "badminton", int64(20000), nil, nil, 3, true, now, now))

	e, err := repo.GetByID(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "Racket", e.Name)
	assert.Equal(t, 3, e.Quantity)
	assert.True(t, e.Available)
	assert.Nil(t, e.Description)
}

func TestRepository_GetByID_LocksInsideTransaction(t *testing.T) {
	repo, mock, db := newRepo(t)
	tm := txmanager.NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM equipment WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(equipmentColumns))
	mock.ExpectRollback()

	err := tm.Do(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, 5)
		return err
	})

	assert.ErrorIs(t, err, ErrEquipmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateSummary(t *testing.T) {
	repo, mock, _ := newRepo(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE equipment SET quantity = \$1, available = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(3, false, at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSummary(context.Background(), 5, domain.InventorySummary{Total: 3, Available: 0}, at)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectExec(`DELETE FROM equipment WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrEquipmentNotFound)
}

func TestRepository_ListIDs(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectQuery(`SELECT id FROM equipment ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	ids, err := repo.ListIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}
