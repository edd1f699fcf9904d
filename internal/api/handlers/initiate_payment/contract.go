package initiate_payment

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
)

type PaymentService interface {
	Initiate(ctx context.Context, req *models.InitiatePaymentRequest) (*models.InitiatePaymentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
