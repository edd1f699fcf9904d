package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SportsBookingService/pkg/txmanager"
)

const tableName = "bookings"

var bookingColumns = []string{
	"id",
	"user_id",
	"facility_id",
	"booking_date",
	"time_slot",
	"start_time",
	"end_time",
	"price",
	"status",
	"payment_status",
	"payment_ref",
	"check_in_at",
	"check_out_at",
	"cancellation_reason",
	"cancelled_at",
	"cancelled_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Уникальность активного слота обеспечивает частичный индекс
// bookings_active_slot_uniq (facility_id, booking_date, time_slot) WHERE status <> 'cancelled'.
// Нарушение индекса возвращается как ErrSlotAlreadyBooked.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"user_id",
			"facility_id",
			"booking_date",
			"time_slot",
			"start_time",
			"end_time",
			"price",
			"status",
			"payment_status",
		).
		Values(
			booking.UserID,
			booking.FacilityID,
			booking.BookingDate,
			booking.TimeSlot,
			booking.StartTime,
			booking.EndTime,
			booking.Price,
			booking.Status,
			booking.PaymentStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if txmanager.IsUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("booking_date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// List получает бронирования с фильтрацией для администратора
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From(tableName)

	if filter.FacilityID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"facility_id": *filter.FacilityID})
	}
	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC", "id DESC")

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(filter.Offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetBookedSlots возвращает метки слотов всех неотмененных бронирований объекта на дату
func (r *Repository) GetBookedSlots(ctx context.Context, facilityID int64, date time.Time) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("time_slot").
		From(tableName).
		Where(squirrel.Eq{"facility_id": facilityID, "booking_date": date}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedSlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("%w: GetBookedSlots - scan time_slot: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookedSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// ExistsActive проверяет, есть ли неотмененное бронирование на слот
// Внутри транзакции найденная строка блокируется (FOR UPDATE)
func (r *Repository) ExistsActive(ctx context.Context, facilityID int64, date time.Time, timeSlot string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id").
		From(tableName).
		Where(squirrel.Eq{"facility_id": facilityID, "booking_date": date, "time_slot": timeSlot}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActive - build select query: %v", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActive - scan id: %v", ErrScanRow, err)
	}

	return true, nil
}

// Confirm переводит бронирование pending -> confirmed и отмечает оплату
func (r *Repository) Confirm(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, "Confirm", id, domain.StatusConfirmed, at, squirrel.Eq{
		"payment_status": domain.PaymentPaid,
	})
}

// CheckIn переводит бронирование confirmed -> checked_in
func (r *Repository) CheckIn(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, "CheckIn", id, domain.StatusCheckedIn, at, squirrel.Eq{
		"check_in_at": at,
	})
}

// CheckOut переводит бронирование checked_in -> completed
// Требует наличия отметки о заезде
func (r *Repository) CheckOut(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, "CheckOut", id, domain.StatusCompleted, at, squirrel.Eq{
		"check_out_at": at,
	}, squirrel.NotEq{"check_in_at": nil})
}

// MarkNoShow переводит бронирование confirmed -> no_show
func (r *Repository) MarkNoShow(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, "MarkNoShow", id, domain.StatusNoShow, at, nil)
}

// Cancel отменяет бронирование с указанием причины и автора отмены
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, cancelledBy int64, at time.Time) error {
	return r.transition(ctx, "Cancel", id, domain.StatusCancelled, at, squirrel.Eq{
		"cancellation_reason": reason,
		"cancelled_at":        at,
		"cancelled_by":        cancelledBy,
	})
}

// SetPaymentRef сохраняет ссылку на платеж для бронирования в статусе pending
func (r *Repository) SetPaymentRef(ctx context.Context, id int64, ref string, at time.Time) error {
	return r.update(ctx, "SetPaymentRef", id, at,
		squirrel.Eq{"payment_ref": ref},
		squirrel.Eq{"status": domain.StatusPending},
		squirrel.NotEq{"payment_status": domain.PaymentPaid},
	)
}

// MarkPaymentFailed отмечает неуспешную оплату, статус бронирования не меняется
func (r *Repository) MarkPaymentFailed(ctx context.Context, id int64, at time.Time) error {
	return r.update(ctx, "MarkPaymentFailed", id, at,
		squirrel.Eq{"payment_status": domain.PaymentFailed},
		squirrel.NotEq{"payment_status": domain.PaymentPaid},
	)
}

// transition выполняет условный переход статуса
// Обновление проходит только если текущий статус допускает переход в target
func (r *Repository) transition(
	ctx context.Context,
	op string,
	id int64,
	target domain.BookingStatus,
	at time.Time,
	set squirrel.Eq,
	conds ...squirrel.Sqlizer,
) error {
	values := squirrel.Eq{"status": target}
	for k, v := range set {
		values[k] = v
	}

	conds = append(conds, squirrel.Eq{"status": domain.SourcesOf(target)})

	return r.update(ctx, op, id, at, values, conds...)
}

// update выполняет UPDATE ... WHERE id = $n AND <conds>
// Если ни одна строка не обновлена, возвращает ErrStatusChanged
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

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FacilityID,
		&booking.BookingDate,
		&booking.TimeSlot,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Price,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.PaymentRef,
		&booking.CheckInAt,
		&booking.CheckOutAt,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.CancelledBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
