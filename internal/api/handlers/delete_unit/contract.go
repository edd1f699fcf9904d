package delete_unit

import "context"

type InventoryService interface {
	DeleteUnit(ctx context.Context, equipmentID, unitID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
