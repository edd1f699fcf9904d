package list_equipment

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

type InventoryService interface {
	ListEquipment(ctx context.Context, category *string) (*models.EquipmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
