package payments

import (
	"context"
	"net/url"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/paymentgateway"
)

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	Resolve(ctx context.Context, reference string, state domain.PaymentState, at time.Time) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentRef(ctx context.Context, id int64, ref string, at time.Time) error
	Confirm(ctx context.Context, id int64, at time.Time) error
	MarkPaymentFailed(ctx context.Context, id int64, at time.Time) error
}

// RentalRepository интерфейс репозитория аренд
type RentalRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EquipmentRental, error)
	SetPaymentRef(ctx context.Context, id int64, ref string, at time.Time) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, at time.Time) error
}

// Gateway клиент платежного шлюза
type Gateway interface {
	BuildPaymentURL(req paymentgateway.PaymentRequest) (string, error)
	VerifyCallback(values url.Values) (*paymentgateway.Callback, error)
}

// Notifier отправка уведомлений (fire-and-forget)
type Notifier interface {
	NotifyBookingConfirmed(b *domain.Booking)
	NotifyBookingPaymentFailed(b *domain.Booking)
	NotifyRentalPaid(r *domain.EquipmentRental)
	NotifyRentalPaymentFailed(r *domain.EquipmentRental)
}

// Metrics бизнес-метрики оплат
type Metrics interface {
	PaymentOutcome(paymentType, outcome string)
	BookingTransition(status string)
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
