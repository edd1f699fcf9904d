package notifier

import "time"

// EventType тип уведомления
type EventType string

const (
	EventBookingConfirmed     EventType = "booking.confirmed"
	EventBookingPaymentFailed EventType = "booking.payment_failed"
	EventBookingCancelled     EventType = "booking.cancelled"
	EventRentalPaid           EventType = "rental.paid"
	EventRentalPaymentFailed  EventType = "rental.payment_failed"
	EventRentalCancelled      EventType = "rental.cancelled"
)

// Event сообщение, публикуемое в очередь уведомлений
type Event struct {
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	BookingID  int64     `json:"booking_id,omitempty"`
	RentalID   int64     `json:"rental_id,omitempty"`
	FacilityID int64     `json:"facility_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	TimeSlot   string    `json:"time_slot,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
