package equipment

import "errors"

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено
	ErrEquipmentNotFound = errors.New("equipment.repository: equipment not found")

	ErrBuildQuery = errors.New("equipment.repository: failed to build query")
	ErrExecQuery  = errors.New("equipment.repository: failed to execute query")
	ErrScanRow    = errors.New("equipment.repository: failed to scan row")
)
