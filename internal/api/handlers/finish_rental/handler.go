package finish_rental

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals/models"
)

const (
	msgInvalidRentalID = "некорректный ID аренды"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgNotFound        = "аренда не найдена"
	msgForbidden       = "доступ запрещен"
	msgInvalidState    = "аренда уже завершена или отменена"
)

type finishFunc func(ctx context.Context, id int64, identity domain.Identity) (*models.RentalResponse, error)

// Handler завершает аренду и возвращает единицы инвентаря
type Handler struct {
	finish finishFunc
	route  string
	logger Logger
}

// NewCancelHandler PATCH /api/v1/rentals/{rentalId}/cancel (владелец или администратор)
func NewCancelHandler(service RentalService, logger Logger) *Handler {
	return &Handler{finish: service.Cancel, route: "PATCH /rentals/{id}/cancel", logger: logger}
}

// NewCompleteHandler PATCH /api/v1/rentals/{rentalId}/complete (персонал)
func NewCompleteHandler(service RentalService, logger Logger) *Handler {
	return &Handler{
		finish: func(ctx context.Context, id int64, _ domain.Identity) (*models.RentalResponse, error) {
			return service.Complete(ctx, id)
		},
		route:  "PATCH /rentals/{id}/complete",
		logger: logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	rentalID, err := handlers.PathInt64(r, "rentalId")
	if err != nil {
		h.logger.Warn("%s - Invalid rental ID: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidRentalID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	rental, err := h.finish(r.Context(), rentalID, identity)
	if err != nil {
		switch {
		case errors.Is(err, rentals.ErrRentalNotFound):
			h.logger.Warn("%s - Rental not found: rental_id=%d", h.route, rentalID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rentals.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: rental_id=%d, user_id=%d", h.route, rentalID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rentals.ErrInvalidState):
			h.logger.Warn("%s - Invalid state: rental_id=%d", h.route, rentalID)
			handlers.RespondUnprocessable(w, msgInvalidState)

		default:
			h.logger.Error("%s - Failed: rental_id=%d, error=%v", h.route, rentalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - rental_id=%d, status=%s", h.route, rentalID, rental.Status)
	handlers.RespondJSON(w, http.StatusOK, rental)
}
