package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateSchedule проверяет, что дата не в прошлом, а сегодняшний слот еще не начался.
// Сравнение идет с точностью до минуты.
func validateSchedule(date time.Time, slot domain.TimeSlot, now time.Time) error {
	if isDateInPast(date, now) {
		return ErrInvalidDate
	}

	if !isSameDay(date, now) {
		return nil
	}

	start, err := slot.Start.On(date)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	if !start.After(now.Truncate(time.Minute)) {
		return fmt.Errorf("%w: slot %s starts before %s", ErrSlotInPast, slot.Label(), now.Format(domain.TimeFormat))
	}

	return nil
}

// dateOnly приводит дату к полуночи в указанной локации
func dateOnly(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	return dateOnly(date, date.Location()).Before(dateOnly(now, date.Location()))
}
