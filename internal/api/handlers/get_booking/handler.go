package get_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgUnauthorized     = "требуется авторизация"
	msgForbidden        = "бронирование принадлежит другому пользователю"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Студент видит только свои бронирования, персонал и администратор - любые.
// В ответ добавляется список действий, доступных запрашивающему.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - user=%d sent invalid booking ID: %v", identity.UserID, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, identity)
	if err != nil {
		h.respondError(w, err, bookingID, identity)
		return
	}

	if booking.UserID != identity.UserID {
		h.logger.Info("GET /bookings/{id} - %s user=%d opened booking_id=%d of user=%d",
			identity.Role, identity.UserID, bookingID, booking.UserID)
	}

	handlers.RespondJSON(w, http.StatusOK, Response{
		BookingResponse: booking,
		Actions:         availableActions(booking, identity),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, bookingID int64, identity domain.Identity) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("GET /bookings/{id} - %s user=%d denied booking_id=%d", identity.Role, identity.UserID, bookingID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("GET /bookings/{id} - booking_id=%d: %v", bookingID, err)
		handlers.RespondInternalError(w)
	}
}
