package domain

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// PaymentStatus represents the payment state of a booking or rental
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

// Booking represents a facility time-slot reservation
type Booking struct {
	ID          int64
	UserID      int64
	FacilityID  int64
	BookingDate time.Time
	TimeSlot    string // "07:00 - 08:00"
	StartTime   types.TimeString
	EndTime     types.TimeString
	Price       int64

	Status        BookingStatus
	PaymentStatus PaymentStatus
	PaymentRef    *string

	CheckInAt  *time.Time
	CheckOutAt *time.Time

	CancellationReason *string
	CancelledAt        *time.Time
	CancelledBy        *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsTerminal returns true if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// CanBeCancelled returns true if the booking can be moved to cancelled
func (b *Booking) CanBeCancelled() bool {
	return CanTransition(b.Status, StatusCancelled)
}

// IsPayable returns true if a payment can be initiated for the booking
func (b *Booking) IsPayable() bool {
	return b.Status == StatusPending && b.PaymentStatus != PaymentPaid
}

// StartsAt returns the moment the slot begins in the location of BookingDate
func (b *Booking) StartsAt() (time.Time, error) {
	return b.StartTime.On(b.BookingDate)
}

// IsOwnedBy returns true if the booking belongs to the user
func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.UserID == userID
}

// BookingsFilter фильтр для административного списка бронирований
type BookingsFilter struct {
	FacilityID *int64         // Фильтр по объекту (опционально)
	UserID     *int64         // Фильтр по пользователю (опционально)
	StartDate  *time.Time     // Начало периода (опционально)
	EndDate    *time.Time     // Конец периода (опционально)
	Status     *BookingStatus // Фильтр по статусу (опционально)
	Limit      uint64
	Offset     uint64
}
