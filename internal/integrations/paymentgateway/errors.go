package paymentgateway

import "errors"

var (
	// ErrInvalidSignature возвращается, когда подпись callback не совпадает
	ErrInvalidSignature = errors.New("paymentgateway: invalid signature")

	// ErrMissingField возвращается, когда в callback нет обязательного поля
	ErrMissingField = errors.New("paymentgateway: missing field")

	// ErrInvalidRequest возвращается при некорректных параметрах платежа
	ErrInvalidRequest = errors.New("paymentgateway: invalid payment request")

	// ErrNotConfigured возвращается, когда не задан секрет подписи
	ErrNotConfigured = errors.New("paymentgateway: hash secret is not configured")
)
