package create_rental

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidDate возвращается, когда дата аренды в прошлом
	ErrInvalidDate = errors.New("invalid rental date")

	// ErrEquipmentNotFound возвращается, когда оборудование не найдено
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrInsufficientInventory возвращается, когда свободных единиц меньше запрошенного
	ErrInsufficientInventory = errors.New("not enough available units")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
