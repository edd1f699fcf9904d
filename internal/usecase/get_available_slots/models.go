package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// Request модель запроса на получение сетки слотов
type Request struct {
	FacilityID int64     // ID спортивного объекта
	Date       time.Time // Дата (без времени)
}

// Response модель ответа с сеткой слотов
type Response struct {
	Date       time.Time
	FacilityID int64
	Slots      []Slot
}

// Slot модель временного слота
type Slot struct {
	Label     string           // "07:00 - 08:00", совпадает с меткой бронирования
	StartTime types.TimeString
	EndTime   types.TimeString
	Available bool // false, если слот пересекается с неотмененным бронированием
}
