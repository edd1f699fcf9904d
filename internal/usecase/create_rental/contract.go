package create_rental

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

// EquipmentRepository интерфейс репозитория оборудования
type EquipmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
}

// RentalRepository интерфейс репозитория аренд
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.EquipmentRental) (*domain.EquipmentRental, error)
}

// Inventory выдача единиц и пересчет сводки оборудования
type Inventory interface {
	AllocateUnits(ctx context.Context, equipmentID int64, count int) ([]int64, error)
	Recompute(ctx context.Context, equipmentID int64) (*models.SummaryResponse, error)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
