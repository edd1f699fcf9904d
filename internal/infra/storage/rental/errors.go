package rental

import "errors"

var (
	// ErrRentalNotFound возвращается, когда аренда не найдена
	ErrRentalNotFound = errors.New("rental.repository: rental not found")

	// ErrStatusChanged возвращается, когда условное обновление не затронуло строку
	ErrStatusChanged = errors.New("rental.repository: rental status changed")

	ErrBuildQuery = errors.New("rental.repository: failed to build query")
	ErrExecQuery  = errors.New("rental.repository: failed to execute query")
	ErrScanRow    = errors.New("rental.repository: failed to scan row")
)
