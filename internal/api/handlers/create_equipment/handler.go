package create_equipment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные инвентаря"
	msgDuplicateSerial    = "серийный номер уже существует"
)

type Handler struct {
	service InventoryService
	logger  Logger
}

func NewHandler(service InventoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/equipment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEquipmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/equipment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateEquipment(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrInvalidInput):
			h.logger.Warn("POST /admin/equipment - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, inventory.ErrDuplicateSerial):
			h.logger.Warn("POST /admin/equipment - Duplicate serial: %v", err)
			handlers.RespondConflict(w, msgDuplicateSerial)

		default:
			h.logger.Error("POST /admin/equipment - Failed to create equipment: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/equipment - Equipment created: equipment_id=%d, quantity=%d", result.ID, result.Quantity)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
