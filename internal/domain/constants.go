package domain

import "time"

// Business rules
const (
	// MinCancellationNotice минимальное время до начала слота для отмены пользователем
	MinCancellationNotice = 2 * time.Hour

	MinRentalHours              = 1
	MaxRentalHours              = 12
	MaxUnitsPerRental           = 20
	MaxInitialUnits             = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
