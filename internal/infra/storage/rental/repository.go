package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/psqlbuilder"
)

const tableName = "equipment_rentals"

var rentalColumns = []string{
	"id",
	"user_id",
	"equipment_id",
	"unit_ids",
	"rental_date",
	"duration_hours",
	"total_price",
	"status",
	"payment_status",
	"payment_ref",
	"completed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий аренд оборудования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория аренд
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет аренду
func (r *Repository) Create(ctx context.Context, rental *domain.EquipmentRental) (*domain.EquipmentRental, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"user_id",
			"equipment_id",
			"unit_ids",
			"rental_date",
			"duration_hours",
			"total_price",
			"status",
			"payment_status",
		).
		Values(
			rental.UserID,
			rental.EquipmentID,
			pq.Array(rental.UnitIDs),
			rental.RentalDate,
			rental.DurationHours,
			rental.TotalPrice,
			rental.Status,
			rental.PaymentStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rental.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rental.CreatedAt = createdAt.Time
	rental.UpdatedAt = updatedAt.Time

	return rental, nil
}

// GetByID получает аренду по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.EquipmentRental, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByUserID получает аренды пользователя, новые сначала
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]*domain.EquipmentRental, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(rentalColumns...).
		From(tableName).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("rental_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rentals := make([]*domain.EquipmentRental, 0)
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByUserID - scan row: %v", ErrScanRow, err)
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - rows error: %v", ErrScanRow, err)
	}

	return rentals, nil
}

// Finish переводит аренду из renting в completed или cancelled
func (r *Repository) Finish(ctx context.Context, id int64, status domain.RentalStatus, at time.Time) error {
	values := squirrel.Eq{"status": status}
	switch status {
	case domain.RentalCompleted:
		values["completed_at"] = at
	case domain.RentalCancelled:
		values["cancelled_at"] = at
	default:
		return fmt.Errorf("%w: Finish - unexpected status %s", ErrBuildQuery, status)
	}

	return r.update(ctx, "Finish", id, at, values, squirrel.Eq{"status": domain.RentalRenting})
}

// SetPaymentRef сохраняет ссылку на платеж для неоплаченной активной аренды
func (r *Repository) SetPaymentRef(ctx context.Context, id int64, ref string, at time.Time) error {
	return r.update(ctx, "SetPaymentRef", id, at,
		squirrel.Eq{"payment_ref": ref},
		squirrel.Eq{"status": domain.RentalRenting},
		squirrel.NotEq{"payment_status": domain.PaymentPaid},
	)
}

// SetPaymentStatus обновляет статус оплаты, оплаченная аренда не меняется
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, at time.Time) error {
	return r.update(ctx, "SetPaymentStatus", id, at,
		squirrel.Eq{"payment_status": status},
		squirrel.NotEq{"payment_status": domain.PaymentPaid},
	)
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.EquipmentRental, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(rentalColumns...).
		From(tableName).
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rental, err := scanRental(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan rental: %v", ErrScanRow, op, err)
	}

	return rental, nil
}

func (r *Repository) update(
	ctx context.Context,
	op string,
	id int64,
	at time.Time,
	values squirrel.Eq,
	conds ...squirrel.Sqlizer,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName).
		SetMap(values).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})
	for _, cond := range conds {
		updateBuilder = updateBuilder.Where(cond)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRental(row rowScanner) (*domain.EquipmentRental, error) {
	var rental domain.EquipmentRental
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rental.ID,
		&rental.UserID,
		&rental.EquipmentID,
		pq.Array(&rental.UnitIDs),
		&rental.RentalDate,
		&rental.DurationHours,
		&rental.TotalPrice,
		&rental.Status,
		&rental.PaymentStatus,
		&rental.PaymentRef,
		&rental.CompletedAt,
		&rental.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rental.CreatedAt = createdAt.Time
	rental.UpdatedAt = updatedAt.Time

	return &rental, nil
}
