package payment_callback

import (
	"context"
	"net/url"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
)

type PaymentService interface {
	HandleCallback(ctx context.Context, values url.Values) (*models.OutcomeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
