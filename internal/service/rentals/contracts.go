package rentals

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	inventoryModels "github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

// RentalRepository интерфейс репозитория аренд
type RentalRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EquipmentRental, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.EquipmentRental, error)
	Finish(ctx context.Context, id int64, status domain.RentalStatus, at time.Time) error
}

// Inventory возврат единиц с пересчетом сводки оборудования
type Inventory interface {
	ReturnUnits(ctx context.Context, equipmentID int64, unitIDs []int64) (*inventoryModels.SummaryResponse, error)
}

// Notifier отправка уведомлений (fire-and-forget)
type Notifier interface {
	NotifyRentalCancelled(r *domain.EquipmentRental)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
