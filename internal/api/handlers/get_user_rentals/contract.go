package get_user_rentals

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals/models"
)

type RentalService interface {
	GetUserRentals(ctx context.Context, userID int64) (*models.RentalListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
