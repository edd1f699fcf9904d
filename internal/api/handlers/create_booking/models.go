package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	FacilityID  int64  `json:"facilityId"`
	BookingDate string `json:"bookingDate"` // "2025-10-15"
	TimeSlot    string `json:"timeSlot"`    // "07:00 - 08:00"
	Price       int64  `json:"price"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	FacilityID    int64  `json:"facilityId"`
	BookingDate   string `json:"bookingDate"`
	TimeSlot      string `json:"timeSlot"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Price         int64  `json:"price"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:     userID,
		FacilityID: r.FacilityID,
		Date:       bookingDate,
		TimeSlot:   r.TimeSlot,
		Price:      r.Price,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:            resp.ID,
		UserID:        resp.UserID,
		FacilityID:    resp.FacilityID,
		BookingDate:   resp.BookingDate.Format(domain.DateFormat),
		TimeSlot:      resp.TimeSlot,
		StartTime:     resp.StartTime.String(),
		EndTime:       resp.EndTime.String(),
		Price:         resp.Price,
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     resp.UpdatedAt.Format(time.RFC3339),
	}
}
