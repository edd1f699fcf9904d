package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotAlreadyBooked возвращается при нарушении уникального индекса слота
	ErrSlotAlreadyBooked = errors.New("booking.repository: slot already booked")

	// ErrStatusChanged возвращается, когда условное обновление не затронуло ни одной строки:
	// бронирование отсутствует или уже находится в другом статусе
	ErrStatusChanged = errors.New("booking.repository: booking status changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
