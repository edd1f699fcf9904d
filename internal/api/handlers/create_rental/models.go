package create_rental

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	createRental "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_rental"
)

// CreateRentalRequest HTTP request model
type CreateRentalRequest struct {
	EquipmentID   int64  `json:"equipmentId"`
	Quantity      int    `json:"quantity"`
	RentalDate    string `json:"rentalDate"` // "2025-10-15"
	DurationHours int    `json:"durationHours"`
}

// RentalResponse HTTP response model
type RentalResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	EquipmentID   int64   `json:"equipmentId"`
	UnitIDs       []int64 `json:"unitIds"`
	Quantity      int     `json:"quantity"`
	RentalDate    string  `json:"rentalDate"`
	DurationHours int     `json:"durationHours"`
	TotalPrice    int64   `json:"totalPrice"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	CreatedAt     string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateRentalRequest) ToUseCaseRequest(userID int64) (*createRental.Request, error) {
	rentalDate, err := time.Parse(domain.DateFormat, r.RentalDate)
	if err != nil {
		return nil, err
	}

	return &createRental.Request{
		UserID:        userID,
		EquipmentID:   r.EquipmentID,
		Quantity:      r.Quantity,
		RentalDate:    rentalDate,
		DurationHours: r.DurationHours,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createRental.Response) *RentalResponse {
	return &RentalResponse{
		ID:            resp.ID,
		UserID:        resp.UserID,
		EquipmentID:   resp.EquipmentID,
		UnitIDs:       resp.UnitIDs,
		Quantity:      len(resp.UnitIDs),
		RentalDate:    resp.RentalDate.Format(domain.DateFormat),
		DurationHours: resp.DurationHours,
		TotalPrice:    resp.TotalPrice,
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
	}
}
