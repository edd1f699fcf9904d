package cancel_booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotCancel       = "бронирование не может быть отменено"
	msgTooLate            = "отмена возможна не позднее чем за 2 часа до начала"
	msgInvalidInput       = "некорректная причина отмены"
	msgCancelled          = "бронирование отменено"
)

type cancelFunc func(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error)

type Handler struct {
	cancel cancelFunc
	route  string
	logger Logger
}

// NewHandler отмена бронирования владельцем
func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		cancel: service.Cancel,
		route:  "PATCH /bookings/{id}/cancel",
		logger: logger,
	}
}

// NewAdminHandler отмена бронирования администратором без проверки владельца и срока
func NewAdminHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		cancel: service.AdminCancel,
		route:  "PATCH /admin/bookings/{id}/cancel",
		logger: logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
// и PATCH /api/v1/admin/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", h.route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело запроса необязательно
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("%s - Invalid request body: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.cancel(r.Context(), bookingID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("%s - Booking not found: booking_id=%d", h.route, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: booking_id=%d, user_id=%d", h.route, bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrCancellationTooLate):
			h.logger.Warn("%s - Too late to cancel: booking_id=%d", h.route, bookingID)
			handlers.RespondUnprocessable(w, msgTooLate)

		case errors.Is(err, bookings.ErrCannotCancel):
			h.logger.Warn("%s - Cannot cancel: booking_id=%d", h.route, bookingID)
			handlers.RespondUnprocessable(w, msgCannotCancel)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", h.route, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("%s - Failed to cancel booking: booking_id=%d, error=%v", h.route, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking cancelled successfully: booking_id=%d, user_id=%d", h.route, bookingID, userID)
	handlers.RespondMessage(w, http.StatusOK, msgCancelled, booking)
}
