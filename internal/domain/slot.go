package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// ErrInvalidTimeSlot is returned when a slot label cannot be parsed
var ErrInvalidTimeSlot = errors.New("domain: invalid time slot")

// TimeSlot is a parsed slot label such as "07:00 - 08:00"
type TimeSlot struct {
	Start types.TimeString
	End   types.TimeString
}

// ParseTimeSlot parses "HH:MM - HH:MM" (spaces around the dash are optional).
// The end must be strictly after the start.
func ParseTimeSlot(label string) (TimeSlot, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}

	start, err := types.NewTimeStringFromString(parts[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeSlot, label, err)
	}
	end, err := types.NewTimeStringFromString(parts[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeSlot, label, err)
	}

	if !start.IsBefore(end) {
		return TimeSlot{}, fmt.Errorf("%w: %q: end must be after start", ErrInvalidTimeSlot, label)
	}

	return TimeSlot{Start: start, End: end}, nil
}

// Label returns the canonical label stored with the booking
func (s TimeSlot) Label() string {
	return fmt.Sprintf("%s - %s", s.Start, s.End)
}

// DurationMinutes returns the slot length
func (s TimeSlot) DurationMinutes() int {
	start, err := s.Start.Minutes()
	if err != nil {
		return 0
	}
	end, err := s.End.Minutes()
	if err != nil {
		return 0
	}
	return end - start
}

// SlotSchedule describes the daily slot grid of the facilities
type SlotSchedule struct {
	OpenTime           types.TimeString
	CloseTime          types.TimeString
	SlotMinutes        int
	AdvanceBookingDays int // 0 means no limit
}
