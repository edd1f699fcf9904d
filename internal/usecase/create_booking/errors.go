package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidTimeSlot возвращается, когда метку слота не удалось разобрать
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrInvalidDate возвращается, когда дата бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrSlotInPast возвращается, когда слот сегодня уже начался
	ErrSlotInPast = errors.New("create_booking: slot has already started")

	// ErrSlotAlreadyBooked возвращается, когда слот занят неотмененным бронированием
	ErrSlotAlreadyBooked = errors.New("create_booking: slot already booked")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
