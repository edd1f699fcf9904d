package delete_equipment

import "context"

type InventoryService interface {
	DeleteEquipment(ctx context.Context, equipmentID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
