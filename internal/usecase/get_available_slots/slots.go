package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// generateTimeSlots генерирует сетку слотов на день с фиксированным шагом.
// Для сегодняшней даты остаются только слоты, которые еще не начались.
func generateTimeSlots(schedule domain.SlotSchedule, requestDate time.Time, now time.Time) []domain.TimeSlot {
	if isDateInPast(requestDate, now) {
		return []domain.TimeSlot{}
	}

	allSlots := make([]domain.TimeSlot, 0)
	current := schedule.OpenTime

	for current.IsBefore(schedule.CloseTime) {
		end, err := current.AddMinutes(schedule.SlotMinutes)
		if err != nil {
			// Шаг вышел за пределы суток
			break
		}
		if end.IsAfter(schedule.CloseTime) {
			break
		}

		allSlots = append(allSlots, domain.TimeSlot{Start: current, End: end})
		current = end
	}

	if !isSameDay(requestDate, now) {
		return allSlots
	}

	// Слот, начинающийся в текущую минуту, уже недоступен
	currentTime := types.NewTimeString(now)
	available := make([]domain.TimeSlot, 0, len(allSlots))
	for _, slot := range allSlots {
		if slot.Start.IsAfter(currentTime) {
			available = append(available, slot)
		}
	}

	return available
}

// markBooked помечает слоты, пересекающиеся с занятыми метками.
// Граничащие интервалы (08:00-09:00 и 09:00-10:00) не пересекаются.
func markBooked(slots []domain.TimeSlot, bookedLabels []string) []Slot {
	booked := make([]domain.TimeSlot, 0, len(bookedLabels))
	for _, label := range bookedLabels {
		ts, err := domain.ParseTimeSlot(label)
		if err != nil {
			continue
		}
		booked = append(booked, ts)
	}

	result := make([]Slot, len(slots))
	for i, slot := range slots {
		result[i] = Slot{
			Label:     slot.Label(),
			StartTime: slot.Start,
			EndTime:   slot.End,
			Available: !overlapsAny(slot, booked),
		}
	}

	return result
}

func overlapsAny(slot domain.TimeSlot, booked []domain.TimeSlot) bool {
	for _, b := range booked {
		if b.Start.IsBefore(slot.End) && b.End.IsAfter(slot.Start) {
			return true
		}
	}
	return false
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
