package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID     int64     // ID пользователя
	FacilityID int64     // ID спортивного объекта
	Date       time.Time // Дата бронирования (без времени)
	TimeSlot   string    // Метка слота, например "07:00 - 08:00"
	Price      int64     // Цена слота
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64
	UserID        int64
	FacilityID    int64
	BookingDate   time.Time
	TimeSlot      string
	StartTime     types.TimeString
	EndTime       types.TimeString
	Price         int64
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
