package payments

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж с такой ссылкой не найден
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrTargetNotFound возвращается, когда оплачиваемое бронирование или аренда не найдены
	ErrTargetNotFound = errors.New("payment target not found")

	// ErrAccessDenied возвращается, когда пользователь оплачивает чужой объект
	ErrAccessDenied = errors.New("access denied")

	// ErrNotPayable возвращается, когда объект уже оплачен или не ожидает оплаты
	ErrNotPayable = errors.New("target is not awaiting payment")

	// ErrInvalidCallback возвращается при неверной подписи или составе callback
	ErrInvalidCallback = errors.New("invalid payment callback")

	// ErrAmountMismatch возвращается, когда сумма в callback не совпадает с платежом
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
