package get_user_rentals

import (
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
)

const msgMissingUserID = "отсутствует ID пользователя"

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

// Handle GET /api/v1/rentals/my-rentals
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetUserRentals(r.Context(), userID)
	if err != nil {
		h.logger.Error("GET /rentals/my-rentals - Failed to get rentals: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /rentals/my-rentals - user_id=%d, count=%d", userID, len(result.Rentals))
	handlers.RespondJSON(w, http.StatusOK, result)
}
