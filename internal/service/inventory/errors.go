package inventory

import "errors"

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrUnitNotFound возвращается, когда единица не найдена у данного оборудования
	ErrUnitNotFound = errors.New("equipment unit not found")

	// ErrInsufficientInventory возвращается, когда свободных единиц меньше запрошенного
	ErrInsufficientInventory = errors.New("not enough available units")

	// ErrUnitRented возвращается при попытке изменить или удалить единицу в аренде
	ErrUnitRented = errors.New("equipment unit is rented")

	// ErrEquipmentInUse возвращается при удалении оборудования с арендованными единицами
	ErrEquipmentInUse = errors.New("equipment has rented units")

	// ErrDuplicateSerial возвращается при повторном серийном номере
	ErrDuplicateSerial = errors.New("serial number already exists")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
