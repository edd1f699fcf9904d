package get_rental

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals"
)

const (
	msgInvalidRentalID = "некорректный ID аренды"
	msgNotFound        = "аренда не найдена"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service RentalService
	logger  Logger
}

func NewHandler(service RentalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/rentals/{rentalId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	rentalID, err := handlers.PathInt64(r, "rentalId")
	if err != nil {
		h.logger.Warn("GET /rentals/{id} - Invalid rental ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRentalID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	rental, err := h.service.GetByID(r.Context(), rentalID, identity)
	if err != nil {
		switch {
		case errors.Is(err, rentals.ErrRentalNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, rentals.ErrAccessDenied):
			h.logger.Warn("GET /rentals/{id} - Access denied: rental_id=%d, user_id=%d", rentalID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("GET /rentals/{id} - Failed to get rental: rental_id=%d, error=%v", rentalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rental)
}
