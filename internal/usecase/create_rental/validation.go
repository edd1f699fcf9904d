package create_rental

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.EquipmentID <= 0 {
		return fmt.Errorf("%w: equipmentID must be positive", ErrInvalidInput)
	}

	if req.Quantity < 1 || req.Quantity > domain.MaxUnitsPerRental {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, domain.MaxUnitsPerRental)
	}

	if req.DurationHours < domain.MinRentalHours || req.DurationHours > domain.MaxRentalHours {
		return fmt.Errorf("%w: duration must be between %d and %d hours",
			ErrInvalidInput, domain.MinRentalHours, domain.MaxRentalHours)
	}

	if req.RentalDate.IsZero() {
		return fmt.Errorf("%w: rentalDate is required", ErrInvalidInput)
	}

	return nil
}

// dateOnly приводит дату к полуночи в указанной локации
func dateOnly(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}
