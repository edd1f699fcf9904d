package delete_unit

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
)

const (
	msgInvalidID   = "некорректный ID"
	msgNotFound    = "единица инвентаря не найдена"
	msgUnitRented  = "единица инвентаря выдана в аренду"
	msgUnitDeleted = "единица инвентаря удалена"
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

// Handle DELETE /api/v1/admin/equipment/{equipmentId}/units/{unitId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.PathInt64(r, "equipmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}
	unitID, err := handlers.PathInt64(r, "unitId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	if err := h.service.DeleteUnit(r.Context(), equipmentID, unitID); err != nil {
		switch {
		case errors.Is(err, inventory.ErrEquipmentNotFound), errors.Is(err, inventory.ErrUnitNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, inventory.ErrUnitRented):
			h.logger.Warn("DELETE /admin/equipment/{id}/units/{unitId} - Unit is rented: unit_id=%d", unitID)
			handlers.RespondConflict(w, msgUnitRented)

		default:
			h.logger.Error("DELETE /admin/equipment/{id}/units/{unitId} - Failed to delete unit: unit_id=%d, error=%v", unitID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/equipment/{id}/units/{unitId} - Unit deleted: equipment_id=%d, unit_id=%d", equipmentID, unitID)
	handlers.RespondMessage(w, http.StatusOK, msgUnitDeleted, nil)
}
