package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	GetBookedSlots(ctx context.Context, facilityID int64, date time.Time) ([]string, error)
	CheckIn(ctx context.Context, id int64, at time.Time) error
	CheckOut(ctx context.Context, id int64, at time.Time) error
	MarkNoShow(ctx context.Context, id int64, at time.Time) error
	Cancel(ctx context.Context, id int64, reason *string, cancelledBy int64, at time.Time) error
}

// SlotCache кэш занятых слотов объекта на дату
type SlotCache interface {
	Get(ctx context.Context, facilityID int64, date time.Time) ([]string, bool, error)
	Set(ctx context.Context, facilityID int64, date time.Time, slots []string) error
	Invalidate(ctx context.Context, facilityID int64, date time.Time) error
}

// Notifier отправка уведомлений (fire-and-forget)
type Notifier interface {
	NotifyBookingCancelled(b *domain.Booking, reason string)
}

// Metrics бизнес-метрики переходов статусов
type Metrics interface {
	BookingTransition(status string)
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
