package unit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestRepository_Allocate(t *testing.T) {
	at := time.Now()

	t.Run("enough units", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`UPDATE equipment_units SET status = \$1.*FOR UPDATE SKIP LOCKED`).
			WithArgs("rented", at, int64(5), "available", 2).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))

		ids, err := repo.Allocate(context.Background(), 5, 2, at)

		require.NoError(t, err)
		assert.Equal(t, []int64{11, 12}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fewer units than requested", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`UPDATE equipment_units`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(13))

		ids, err := repo.Allocate(context.Background(), 5, 2, at)

		assert.ErrorIs(t, err, ErrInsufficientUnits)
		assert.Equal(t, []int64{13}, ids)
	})
}

func TestRepository_Release(t *testing.T) {
	repo, mock := newRepo(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE equipment_units SET status = \$1, updated_at = \$2 WHERE id IN \(\$3,\$4\) AND status = \$5`).
		WithArgs("available", at, int64(11), int64(12), "rented").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Release(context.Background(), []int64{11, 12}, at)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Release_Empty(t *testing.T) {
	repo, mock := newRepo(t)

	n, err := repo.Release(context.Background(), nil, time.Now())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Summary(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE status = \$1\) FROM equipment_units WHERE equipment_id = \$2`).
		WithArgs("available", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "available"}).AddRow(3, 1))

	summary, err := repo.Summary(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, domain.InventorySummary{Total: 3, Available: 1}, summary)
}

func TestRepository_CreateBulk(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO equipment_units \(equipment_id,serial_number,status\) VALUES \(\$1,\$2,\$3\),\(\$4,\$5,\$6\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow(1, 5, "RAC-1", "available", now, now).
			AddRow(2, 5, "RAC-2", "available", now, now))

	units, err := repo.CreateBulk(context.Background(), 5, []string{"RAC-1", "RAC-2"})

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "RAC-2", units[1].SerialNumber)
	assert.Equal(t, domain.UnitAvailable, units[0].Status)
}

func TestRepository_CreateBulk_DuplicateSerial(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO equipment_units`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateBulk(context.Background(), 5, []string{"RAC-1"})

	assert.ErrorIs(t, err, ErrSerialTaken)
}

func TestRepository_UpdateStatus_Conflict(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`UPDATE equipment_units SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status IN \(\$4,\$5\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 1,
		[]domain.UnitStatus{domain.UnitAvailable, domain.UnitBroken}, domain.UnitMaintenance, time.Now())

	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestRepository_Delete_RentedUnitIsKept(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM equipment_units WHERE id = \$1 AND status <> \$2`).
		WithArgs(int64(1), "rented").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 1), ErrStatusChanged)
}
