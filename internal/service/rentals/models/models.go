package models

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// RentalResponse ответ с данными аренды
type RentalResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	EquipmentID   int64   `json:"equipmentId"`
	UnitIDs       []int64 `json:"unitIds"`
	Quantity      int     `json:"quantity"`
	RentalDate    string  `json:"rentalDate"` // "2025-10-15"
	DurationHours int     `json:"durationHours"`
	TotalPrice    int64   `json:"totalPrice"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentRef    *string `json:"paymentRef,omitempty"`

	CompletedAt *string `json:"completedAt,omitempty"` // ISO 8601 format
	CancelledAt *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RentalListResponse ответ со списком аренд
type RentalListResponse struct {
	Rentals []RentalResponse `json:"rentals"`
}

// FromDomainRental конвертирует domain модель в DTO
func FromDomainRental(r *domain.EquipmentRental) *RentalResponse {
	if r == nil {
		return nil
	}

	unitIDs := r.UnitIDs
	if unitIDs == nil {
		unitIDs = []int64{}
	}

	return &RentalResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		EquipmentID:   r.EquipmentID,
		UnitIDs:       unitIDs,
		Quantity:      len(unitIDs),
		RentalDate:    r.RentalDate.Format(domain.DateFormat),
		DurationHours: r.DurationHours,
		TotalPrice:    r.TotalPrice,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		PaymentRef:    r.PaymentRef,
		CompletedAt:   formatTime(r.CompletedAt),
		CancelledAt:   formatTime(r.CancelledAt),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// FromDomainRentalList конвертирует список domain моделей в DTO
func FromDomainRentalList(items []*domain.EquipmentRental) *RentalListResponse {
	resp := &RentalListResponse{Rentals: make([]RentalResponse, 0, len(items))}
	for _, r := range items {
		if rr := FromDomainRental(r); rr != nil {
			resp.Rentals = append(resp.Rentals, *rr)
		}
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
