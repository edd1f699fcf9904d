package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64   `json:"userId"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// ListBookingsRequest запрос административного списка бронирований
type ListBookingsRequest struct {
	FacilityID *int64     `json:"facilityId,omitempty"`
	UserID     *int64     `json:"userId,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate    *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
	Status     *string    `json:"status,omitempty"`
	Limit      uint64     `json:"limit,omitempty"`
	Offset     uint64     `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		FacilityID: r.FacilityID,
		UserID:     r.UserID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	FacilityID    int64   `json:"facilityId"`
	BookingDate   string  `json:"bookingDate"` // "2025-10-15"
	TimeSlot      string  `json:"timeSlot"`    // "07:00 - 08:00"
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Price         int64   `json:"price"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentRef    *string `json:"paymentRef,omitempty"`

	CheckInAt  *string `json:"checkInAt,omitempty"`  // ISO 8601 format
	CheckOutAt *string `json:"checkOutAt,omitempty"` // ISO 8601 format

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CancelledBy        *int64  `json:"cancelledBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BookedSlotsResponse занятые слоты объекта на дату
type BookedSlotsResponse struct {
	FacilityID  int64    `json:"facilityId"`
	Date        string   `json:"date"`
	BookedSlots []string `json:"bookedSlots"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		FacilityID:         b.FacilityID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		TimeSlot:           b.TimeSlot,
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Price:              b.Price,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		PaymentRef:         b.PaymentRef,
		CheckInAt:          formatTime(b.CheckInAt),
		CheckOutAt:         formatTime(b.CheckOutAt),
		CancellationReason: b.CancellationReason,
		CancelledAt:        formatTime(b.CancelledAt),
		CancelledBy:        b.CancelledBy,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}
