package unit

import "errors"

var (
	// ErrUnitNotFound возвращается, когда единица оборудования не найдена
	ErrUnitNotFound = errors.New("unit.repository: unit not found")

	// ErrSerialTaken возвращается при нарушении уникальности серийного номера
	ErrSerialTaken = errors.New("unit.repository: serial number already exists")

	// ErrStatusChanged возвращается, когда условное обновление статуса не затронуло строку
	ErrStatusChanged = errors.New("unit.repository: unit status changed")

	// ErrInsufficientUnits возвращается, когда свободных единиц меньше запрошенного
	ErrInsufficientUnits = errors.New("unit.repository: not enough available units")

	ErrBuildQuery = errors.New("unit.repository: failed to build query")
	ErrExecQuery  = errors.New("unit.repository: failed to execute query")
	ErrScanRow    = errors.New("unit.repository: failed to scan row")
)
