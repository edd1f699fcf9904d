package unit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SportsBookingService/pkg/txmanager"
)

const tableName = "equipment_units"

var unitColumns = []string{
	"id",
	"equipment_id",
	"serial_number",
	"status",
	"created_at",
	"updated_at",
}

// allocateQuery атомарно переводит до $5 свободных единиц в rented.
// SKIP LOCKED не дает двум параллельным арендам выбрать одни и те же строки.
const allocateQuery = `UPDATE equipment_units SET status = $1, updated_at = $2
WHERE id IN (
	SELECT id FROM equipment_units
	WHERE equipment_id = $3 AND status = $4
	ORDER BY id
	LIMIT $5
	FOR UPDATE SKIP LOCKED
)
RETURNING id`

// Repository репозиторий серийных единиц оборудования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория единиц
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBulk создает единицы с указанными серийными номерами в статусе available
func (r *Repository) CreateBulk(ctx context.Context, equipmentID int64, serials []string) ([]*domain.EquipmentUnit, error) {
	if len(serials) == 0 {
		return []*domain.EquipmentUnit{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(tableName).
		Columns("equipment_id", "serial_number", "status")
	for _, serial := range serials {
		insertBuilder = insertBuilder.Values(equipmentID, serial, domain.UnitAvailable)
	}

	query, args, err := insertBuilder.
		Suffix("RETURNING " + strings.Join(unitColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBulk - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if txmanager.IsUniqueViolation(err) {
			return nil, ErrSerialTaken
		}
		return nil, fmt.Errorf("%w: CreateBulk - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	units, err := scanUnits(rows)
	if err != nil {
		// pq возвращает нарушение индекса при чтении первой строки
		if txmanager.IsUniqueViolation(err) {
			return nil, ErrSerialTaken
		}
		return nil, err
	}

	return units, nil
}

// GetByID получает единицу оборудования
func (r *Repository) GetByID(ctx context.Context, equipmentID, unitID int64) (*domain.EquipmentUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(unitColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": unitID, "equipment_id": equipmentID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	u, err := scanUnit(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan unit: %v", ErrScanRow, err)
	}

	return u, nil
}

// ListByEquipment получает все единицы оборудования
func (r *Repository) ListByEquipment(ctx context.Context, equipmentID int64) ([]*domain.EquipmentUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(unitColumns...).
		From(tableName).
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanUnits(rows)
}

// Summary считает общее количество единиц и количество свободных
func (r *Repository) Summary(ctx context.Context, equipmentID int64) (domain.InventorySummary, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status = ?)", domain.UnitAvailable)).
		From(tableName).
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		ToSql()
	if err != nil {
		return domain.InventorySummary{}, fmt.Errorf("%w: Summary - build select query: %v", ErrBuildQuery, err)
	}

	var summary domain.InventorySummary
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&summary.Total, &summary.Available); err != nil {
		return domain.InventorySummary{}, fmt.Errorf("%w: Summary - scan counts: %v", ErrScanRow, err)
	}

	return summary, nil
}

// CountByStatus считает единицы оборудования в указанном статусе
func (r *Repository) CountByStatus(ctx context.Context, equipmentID int64, status domain.UnitStatus) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableName).
		Where(squirrel.Eq{"equipment_id": equipmentID, "status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByStatus - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByStatus - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Allocate атомарно переводит count свободных единиц в rented и возвращает их ID.
// Если свободных единиц меньше count, возвращает ErrInsufficientUnits:
// вызывающий обязан откатить транзакцию, чтобы отменить частичное выделение.
func (r *Repository) Allocate(ctx context.Context, equipmentID int64, count int, at time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, allocateQuery,
		domain.UnitRented, at, equipmentID, domain.UnitAvailable, count)
	if err != nil {
		return nil, fmt.Errorf("%w: Allocate - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, count)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: Allocate - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Allocate - rows error: %v", ErrScanRow, err)
	}

	if len(ids) < count {
		return ids, fmt.Errorf("%w: requested %d, got %d", ErrInsufficientUnits, count, len(ids))
	}

	return ids, nil
}

// Release возвращает арендованные единицы в available
// Возвращает количество фактически освобожденных единиц
func (r *Repository) Release(ctx context.Context, unitIDs []int64, at time.Time) (int, error) {
	if len(unitIDs) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.UnitAvailable).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": unitIDs, "status": domain.UnitRented}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	return int(rowsAffected), nil
}

// UpdateStatus меняет статус единицы, если текущий статус входит в from
func (r *Repository) UpdateStatus(
	ctx context.Context,
	unitID int64,
	from []domain.UnitStatus,
	to domain.UnitStatus,
	at time.Time,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": unitID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// Delete удаляет единицу, если она не в аренде
func (r *Repository) Delete(ctx context.Context, unitID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": unitID}).
		Where(squirrel.NotEq{"status": domain.UnitRented}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// DeleteByEquipment удаляет все единицы оборудования
func (r *Repository) DeleteByEquipment(ctx context.Context, equipmentID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByEquipment - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByEquipment - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByEquipment - get rows affected: %v", ErrExecQuery, err)
	}

	return int(rowsAffected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUnit(row rowScanner) (*domain.EquipmentUnit, error) {
	var u domain.EquipmentUnit
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&u.ID, &u.EquipmentID, &u.SerialNumber, &u.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	return &u, nil
}

func scanUnits(rows *sql.Rows) ([]*domain.EquipmentUnit, error) {
	units := make([]*domain.EquipmentUnit, 0)

	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanUnits - scan row: %v", ErrScanRow, err)
		}
		units = append(units, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanUnits - rows error: %w", ErrScanRow, err)
	}

	return units, nil
}
