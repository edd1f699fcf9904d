package reconcile_equipment

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

type InventoryService interface {
	SyncItemCount(ctx context.Context, equipmentID int64) (*models.SyncResponse, error)
	Recompute(ctx context.Context, equipmentID int64) (*models.SummaryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
