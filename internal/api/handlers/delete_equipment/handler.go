package delete_equipment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
)

const (
	msgInvalidEquipmentID = "некорректный ID инвентаря"
	msgNotFound           = "инвентарь не найден"
	msgInUse              = "инвентарь выдан в аренду"
	msgDeleted            = "инвентарь удален"
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

// Handle DELETE /api/v1/admin/equipment/{equipmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.PathInt64(r, "equipmentId")
	if err != nil {
		h.logger.Warn("DELETE /admin/equipment/{id} - Invalid equipment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEquipmentID)
		return
	}

	if err := h.service.DeleteEquipment(r.Context(), equipmentID); err != nil {
		switch {
		case errors.Is(err, inventory.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, inventory.ErrEquipmentInUse):
			h.logger.Warn("DELETE /admin/equipment/{id} - Equipment in use: equipment_id=%d", equipmentID)
			handlers.RespondConflict(w, msgInUse)

		default:
			h.logger.Error("DELETE /admin/equipment/{id} - Failed to delete: equipment_id=%d, error=%v", equipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/equipment/{id} - Equipment deleted: equipment_id=%d", equipmentID)
	handlers.RespondMessage(w, http.StatusOK, msgDeleted, nil)
}
