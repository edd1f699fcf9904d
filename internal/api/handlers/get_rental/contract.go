package get_rental

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals/models"
)

type RentalService interface {
	GetByID(ctx context.Context, id int64, identity domain.Identity) (*models.RentalResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
