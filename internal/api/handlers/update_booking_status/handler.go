package update_booking_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgNotFound          = "бронирование не найдено"
	msgInvalidTransition = "переход в этот статус недоступен"
)

type transitionFunc func(ctx context.Context, bookingID int64) (*models.BookingResponse, error)

// Handler переводит бронирование по жизненному циклу (действия персонала)
type Handler struct {
	transition transitionFunc
	route      string
	logger     Logger
}

// NewCheckInHandler PATCH /api/v1/bookings/{bookingId}/checkin
func NewCheckInHandler(service BookingService, logger Logger) *Handler {
	return &Handler{transition: service.CheckIn, route: "PATCH /bookings/{id}/checkin", logger: logger}
}

// NewCheckOutHandler PATCH /api/v1/bookings/{bookingId}/checkout
func NewCheckOutHandler(service BookingService, logger Logger) *Handler {
	return &Handler{transition: service.CheckOut, route: "PATCH /bookings/{id}/checkout", logger: logger}
}

// NewNoShowHandler PATCH /api/v1/bookings/{bookingId}/no-show
func NewNoShowHandler(service BookingService, logger Logger) *Handler {
	return &Handler{transition: service.MarkNoShow, route: "PATCH /bookings/{id}/no-show", logger: logger}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.transition(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("%s - Booking not found: booking_id=%d", h.route, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: booking_id=%d, error=%v", h.route, bookingID, err)
			handlers.RespondUnprocessable(w, msgInvalidTransition)

		default:
			h.logger.Error("%s - Failed to update booking: booking_id=%d, error=%v", h.route, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking updated: booking_id=%d, status=%s", h.route, bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
