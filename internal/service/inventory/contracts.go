package inventory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// EquipmentRepository интерфейс репозитория оборудования
type EquipmentRepository interface {
	Create(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error)
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context, category *string) ([]*domain.Equipment, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateSummary(ctx context.Context, id int64, summary domain.InventorySummary, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// UnitRepository интерфейс репозитория единиц оборудования
type UnitRepository interface {
	CreateBulk(ctx context.Context, equipmentID int64, serials []string) ([]*domain.EquipmentUnit, error)
	GetByID(ctx context.Context, equipmentID, unitID int64) (*domain.EquipmentUnit, error)
	ListByEquipment(ctx context.Context, equipmentID int64) ([]*domain.EquipmentUnit, error)
	Summary(ctx context.Context, equipmentID int64) (domain.InventorySummary, error)
	CountByStatus(ctx context.Context, equipmentID int64, status domain.UnitStatus) (int, error)
	Allocate(ctx context.Context, equipmentID int64, count int, at time.Time) ([]int64, error)
	Release(ctx context.Context, unitIDs []int64, at time.Time) (int, error)
	UpdateStatus(ctx context.Context, unitID int64, from []domain.UnitStatus, to domain.UnitStatus, at time.Time) error
	Delete(ctx context.Context, unitID int64) error
	DeleteByEquipment(ctx context.Context, equipmentID int64) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
// Вложенный вызов переиспользует внешнюю транзакцию
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics бизнес-метрики инвентаря
type Metrics interface {
	UnitsRented(n int)
	UnitsReturned(n int)
	InsufficientInventory()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
