package get_equipment

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

type InventoryService interface {
	GetEquipment(ctx context.Context, id int64) (*models.EquipmentDetailsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
