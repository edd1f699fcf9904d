package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

var ict = time.FixedZone("ICT", 7*3600)

type stubRepo struct {
	slots []string
	err   error
}

func (s stubRepo) GetBookedSlots(_ context.Context, _ int64, _ time.Time) ([]string, error) {
	return s.slots, s.err
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var schedule = domain.SlotSchedule{
	OpenTime:           "06:00",
	CloseTime:          "10:30",
	SlotMinutes:        60,
	AdvanceBookingDays: 14,
}

func newUseCase(repo BookingRepository, now time.Time) *UseCase {
	uc := NewUseCase(repo, schedule, ict, logger.NewNop())
	uc.timeProvider = fixedTime{t: now}
	return uc
}

func TestUseCase_Execute_FutureDate(t *testing.T) {
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, ict)
	uc := newUseCase(stubRepo{slots: []string{"07:00 - 08:00"}}, now)

	resp, err := uc.Execute(context.Background(), &Request{
		FacilityID: 1,
		Date:       time.Date(2025, 1, 10, 0, 0, 0, 0, ict),
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, "06:00 - 07:00", resp.Slots[0].Label)
	assert.True(t, resp.Slots[0].Available)
	assert.Equal(t, "07:00 - 08:00", resp.Slots[1].Label)
	assert.False(t, resp.Slots[1].Available)
	assert.True(t, resp.Slots[2].Available)
	// 10:00-11:00 выходит за время закрытия
	assert.Equal(t, "09:00 - 10:00", resp.Slots[3].Label)
}

func TestUseCase_Execute_TodayDropsStartedSlots(t *testing.T) {
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, ict)
	uc := newUseCase(stubRepo{}, now)

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1, Date: now})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "08:00 - 09:00", resp.Slots[0].Label)
}

func TestUseCase_Execute_OverlappingCustomLabel(t *testing.T) {
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, ict)
	uc := newUseCase(stubRepo{slots: []string{"08:30 - 09:30"}}, now)

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1, Date: now.AddDate(0, 0, 1)})

	require.NoError(t, err)
	assert.True(t, resp.Slots[1].Available)
	assert.False(t, resp.Slots[2].Available)
	assert.False(t, resp.Slots[3].Available)
}

func TestUseCase_Execute_Errors(t *testing.T) {
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, ict)

	_, err := newUseCase(stubRepo{}, now).Execute(context.Background(), &Request{FacilityID: 0, Date: now})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = newUseCase(stubRepo{}, now).Execute(context.Background(), &Request{FacilityID: 1, Date: now.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = newUseCase(stubRepo{}, now).Execute(context.Background(), &Request{FacilityID: 1, Date: now.AddDate(0, 0, 15)})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)

	_, err = newUseCase(stubRepo{err: errors.New("db down")}, now).Execute(context.Background(), &Request{FacilityID: 1, Date: now})
	assert.ErrorIs(t, err, ErrInternal)
}
