package get_booking

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

// BookingService проверяет владение бронированием: чужое доступно только персоналу
type BookingService interface {
	GetByID(ctx context.Context, id int64, identity domain.Identity) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
