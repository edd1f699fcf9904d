package domain

import "time"

// RentalStatus represents the status of an equipment rental
type RentalStatus string

const (
	RentalRenting   RentalStatus = "renting"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

// EquipmentRental is a rental of one or more units of the same equipment
type EquipmentRental struct {
	ID            int64
	UserID        int64
	EquipmentID   int64
	UnitIDs       []int64
	RentalDate    time.Time
	DurationHours int
	TotalPrice    int64
	Status        RentalStatus
	PaymentStatus PaymentStatus
	PaymentRef    *string
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal returns true once the units have been returned
func (r *EquipmentRental) IsTerminal() bool {
	return r.Status == RentalCompleted || r.Status == RentalCancelled
}

// IsPayable returns true if a payment can be initiated for the rental
func (r *EquipmentRental) IsPayable() bool {
	return r.Status == RentalRenting && r.PaymentStatus != PaymentPaid
}

// RentalPrice returns pricePerHour × duration × unit count
func RentalPrice(pricePerHour int64, durationHours, units int) int64 {
	return pricePerHour * int64(durationHours) * int64(units)
}
