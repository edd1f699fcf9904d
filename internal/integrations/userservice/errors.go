package userservice

import "errors"

var (
	// ErrUserNotFound пользователь неизвестен UserService
	ErrUserNotFound = errors.New("userservice: user not found")

	// ErrUnavailable UserService не ответил или ответил 5xx
	ErrUnavailable = errors.New("userservice: service unavailable")

	// ErrInvalidResponse ответ не удалось разобрать
	ErrInvalidResponse = errors.New("userservice: invalid response")
)
