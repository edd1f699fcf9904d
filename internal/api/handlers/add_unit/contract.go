package add_unit

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

type InventoryService interface {
	AddUnit(ctx context.Context, equipmentID int64, req *models.AddUnitRequest) (*models.UnitResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
