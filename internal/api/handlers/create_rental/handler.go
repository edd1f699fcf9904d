package create_rental

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	createRental "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_rental"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты аренды, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "количество от 1 до 20, длительность от 1 до 12 часов"
	msgPastDate           = "дата аренды уже прошла"
	msgEquipmentNotFound  = "инвентарь не найден"
	msgInsufficient       = "недостаточно свободных единиц инвентаря"
)

type Handler struct {
	useCase CreateRentalUseCase
	logger  Logger
}

func NewHandler(useCase CreateRentalUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rentals
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /rentals - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateRentalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /rentals - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /rentals - Invalid rental date %q: %v", req.RentalDate, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createRental.ErrInsufficientInventory):
			h.logger.Warn("POST /rentals - Insufficient inventory: equipment_id=%d, quantity=%d", req.EquipmentID, req.Quantity)
			handlers.RespondConflict(w, msgInsufficient)

		case errors.Is(err, createRental.ErrEquipmentNotFound):
			h.logger.Warn("POST /rentals - Equipment not found: equipment_id=%d", req.EquipmentID)
			handlers.RespondNotFound(w, msgEquipmentNotFound)

		case errors.Is(err, createRental.ErrInvalidDate):
			h.logger.Warn("POST /rentals - Date in the past: %s", req.RentalDate)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, createRental.ErrInvalidInput):
			h.logger.Warn("POST /rentals - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /rentals - Failed to create rental: user_id=%d, equipment_id=%d, error=%v",
				userID, req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /rentals - Rental created: rental_id=%d, user_id=%d, units=%v", result.ID, userID, result.UnitIDs)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
