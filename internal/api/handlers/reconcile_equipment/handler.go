package reconcile_equipment

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
)

const (
	msgInvalidEquipmentID = "некорректный ID инвентаря"
	msgNotFound           = "инвентарь не найден"
)

type Handler struct {
	run    func(ctx context.Context, equipmentID int64) (interface{}, error)
	route  string
	logger Logger
}

// NewSyncHandler POST /api/v1/admin/equipment/{equipmentId}/sync
// Досоздает недостающие единицы до quantity каталога
func NewSyncHandler(service InventoryService, logger Logger) *Handler {
	return &Handler{
		run: func(ctx context.Context, id int64) (interface{}, error) {
			return service.SyncItemCount(ctx, id)
		},
		route:  "POST /admin/equipment/{id}/sync",
		logger: logger,
	}
}

// NewRecomputeHandler POST /api/v1/admin/equipment/{equipmentId}/recompute
// Пересчитывает quantity и available по фактическим единицам
func NewRecomputeHandler(service InventoryService, logger Logger) *Handler {
	return &Handler{
		run: func(ctx context.Context, id int64) (interface{}, error) {
			return service.Recompute(ctx, id)
		},
		route:  "POST /admin/equipment/{id}/recompute",
		logger: logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.PathInt64(r, "equipmentId")
	if err != nil {
		h.logger.Warn("%s - Invalid equipment ID: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidEquipmentID)
		return
	}

	result, err := h.run(r.Context(), equipmentID)
	if err != nil {
		if errors.Is(err, inventory.ErrEquipmentNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("%s - Failed: equipment_id=%d, error=%v", h.route, equipmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s - Done: equipment_id=%d", h.route, equipmentID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
