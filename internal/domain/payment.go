package domain

import "time"

// PaymentType identifies what a payment pays for
type PaymentType string

const (
	PaymentTypeBooking         PaymentType = "booking"
	PaymentTypeEquipmentRental PaymentType = "equipment_rental"
)

// IsValid returns true if the payment type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeBooking || t == PaymentTypeEquipmentRental
}

// PaymentState represents the state of a tracked payment intent
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

// Payment is a tracked payment intent sent to the gateway
type Payment struct {
	ID        int64
	Reference string // uuid, передается шлюзу как vnp_TxnRef
	Type      PaymentType
	TargetID  int64 // booking или rental ID
	UserID    int64
	Amount    int64
	State     PaymentState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentOutcome is the result reported by the gateway
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailure PaymentOutcome = "failure"
)
