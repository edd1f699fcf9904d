package set_unit_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
)

const (
	msgInvalidID          = "некорректный ID"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStatus      = "недопустимый статус единицы инвентаря"
	msgNotFound           = "единица инвентаря не найдена"
	msgUnitRented         = "единица инвентаря выдана в аренду"
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

// Handle PATCH /api/v1/admin/equipment/{equipmentId}/units/{unitId}/status
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

	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/equipment/{id}/units/{unitId}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	status := domain.UnitStatus(req.Status)
	if !status.IsAdminSettable() {
		h.logger.Warn("PATCH /admin/equipment/{id}/units/{unitId}/status - Invalid status: %q", req.Status)
		handlers.RespondBadRequest(w, msgInvalidStatus)
		return
	}

	result, err := h.service.SetUnitStatus(r.Context(), equipmentID, unitID, status)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrEquipmentNotFound), errors.Is(err, inventory.ErrUnitNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, inventory.ErrUnitRented):
			h.logger.Warn("PATCH /admin/equipment/{id}/units/{unitId}/status - Unit is rented: unit_id=%d", unitID)
			handlers.RespondConflict(w, msgUnitRented)

		case errors.Is(err, inventory.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("PATCH /admin/equipment/{id}/units/{unitId}/status - Failed to set status: unit_id=%d, error=%v", unitID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/equipment/{id}/units/{unitId}/status - Status changed: unit_id=%d, status=%s", unitID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
