package update_booking_status

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

type BookingService interface {
	CheckIn(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
	CheckOut(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
	MarkNoShow(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
