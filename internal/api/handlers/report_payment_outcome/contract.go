package report_payment_outcome

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
)

type PaymentService interface {
	ReportOutcome(ctx context.Context, reference string, outcome domain.PaymentOutcome) (*models.OutcomeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
