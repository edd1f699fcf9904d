package payment

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrStateChanged возвращается, когда платеж уже не находится в ожидаемом состоянии
	ErrStateChanged = errors.New("payment.repository: payment state changed")

	ErrBuildQuery = errors.New("payment.repository: failed to build query")
	ErrExecQuery  = errors.New("payment.repository: failed to execute query")
	ErrScanRow    = errors.New("payment.repository: failed to scan row")
)
