package add_unit

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

const (
	msgInvalidEquipmentID = "некорректный ID инвентаря"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSerial      = "некорректный серийный номер"
	msgNotFound           = "инвентарь не найден"
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

// Handle POST /api/v1/admin/equipment/{equipmentId}/units
// Тело запроса необязательно: без serialNumber номер генерируется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.PathInt64(r, "equipmentId")
	if err != nil {
		h.logger.Warn("POST /admin/equipment/{id}/units - Invalid equipment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEquipmentID)
		return
	}

	var req models.AddUnitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("POST /admin/equipment/{id}/units - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AddUnit(r.Context(), equipmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, inventory.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSerial)

		case errors.Is(err, inventory.ErrDuplicateSerial):
			h.logger.Warn("POST /admin/equipment/{id}/units - Duplicate serial: equipment_id=%d", equipmentID)
			handlers.RespondConflict(w, msgDuplicateSerial)

		default:
			h.logger.Error("POST /admin/equipment/{id}/units - Failed to add unit: equipment_id=%d, error=%v", equipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/equipment/{id}/units - Unit added: equipment_id=%d, unit_id=%d, serial=%s",
		equipmentID, result.ID, result.SerialNumber)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
