package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
	"github.com/m04kA/SMC-SportsBookingService/pkg/ptr"
)

var ict = time.FixedZone("ICT", 7*3600)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockRepo) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockRepo) GetBookedSlots(ctx context.Context, facilityID int64, date time.Time) ([]string, error) {
	args := m.Called(ctx, facilityID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRepo) CheckIn(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRepo) CheckOut(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRepo) MarkNoShow(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRepo) Cancel(ctx context.Context, id int64, reason *string, cancelledBy int64, at time.Time) error {
	return m.Called(ctx, id, reason, cancelledBy, at).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, facilityID int64, date time.Time) ([]string, bool, error) {
	args := m.Called(ctx, facilityID, date)
	slots, _ := args.Get(0).([]string)
	return slots, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, facilityID int64, date time.Time, slots []string) error {
	return m.Called(ctx, facilityID, date, slots).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, facilityID int64, date time.Time) error {
	return m.Called(ctx, facilityID, date).Error(0)
}

type recordingNotifier struct {
	cancelled []int64
	reasons   []string
}

func (n *recordingNotifier) NotifyBookingCancelled(b *domain.Booking, reason string) {
	n.cancelled = append(n.cancelled, b.ID)
	n.reasons = append(n.reasons, reason)
}

type recordingMetrics struct {
	transitions []string
}

func (m *recordingMetrics) BookingTransition(status string) {
	m.transitions = append(m.transitions, status)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fixture struct {
	svc      *Service
	repo     *mockRepo
	notifier *recordingNotifier
	metrics  *recordingMetrics
}

func newFixture(now time.Time, cache SlotCache) *fixture {
	f := &fixture{
		repo:     new(mockRepo),
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
	}
	f.svc = NewService(f.repo, cache, f.notifier, f.metrics, ict, logger.NewNop())
	f.svc.timeProvider = fixedTime{t: now}
	return f
}

func confirmedBooking(date time.Time, slot string) *domain.Booking {
	ts, _ := domain.ParseTimeSlot(slot)
	return &domain.Booking{
		ID:            10,
		UserID:        42,
		FacilityID:    1,
		BookingDate:   date,
		TimeSlot:      ts.Label(),
		StartTime:     ts.Start,
		EndTime:       ts.End,
		Price:         180000,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPaid,
	}
}

func TestService_Cancel_WithinTwoHours(t *testing.T) {
	// Слот начинается через 90 минут
	now := time.Date(2025, 1, 10, 5, 30, 0, 0, ict)
	booking := confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "07:00 - 08:00")

	f := newFixture(now, nil)
	f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)

	_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 42})

	assert.ErrorIs(t, err, ErrCancellationTooLate)
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
	f.repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.cancelled)
}

func TestService_Cancel_ExactlyTwoHoursAhead(t *testing.T) {
	now := time.Date(2025, 1, 10, 5, 0, 0, 0, ict)
	booking := confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "07:00 - 08:00")

	cache := new(mockCache)
	cache.On("Invalidate", mock.Anything, int64(1), booking.BookingDate).Return(nil)

	f := newFixture(now, cache)
	f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)
	f.repo.On("Cancel", mock.Anything, int64(10), ptr.Ptr("rain"), int64(42), now).Return(nil)

	resp, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
		UserID:             42,
		CancellationReason: ptr.Ptr("rain"),
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.CancelledBy)
	assert.Equal(t, int64(42), *resp.CancelledBy)
	assert.Equal(t, []int64{10}, f.notifier.cancelled)
	assert.Equal(t, []string{"rain"}, f.notifier.reasons)
	assert.Equal(t, []string{"cancelled"}, f.metrics.transitions)
	cache.AssertExpectations(t)
}

func TestService_Cancel_Rejections(t *testing.T) {
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, ict)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, ict)

	t.Run("not found", func(t *testing.T) {
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(nil, bookingRepo.ErrBookingNotFound)

		_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 42})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(confirmedBooking(date, "07:00 - 08:00"), nil)

		_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 7})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusNoShow} {
		t.Run("terminal "+string(status), func(t *testing.T) {
			booking := confirmedBooking(date, "07:00 - 08:00")
			booking.Status = status
			f := newFixture(now, nil)
			f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)

			_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 42})
			assert.ErrorIs(t, err, ErrCannotCancel)
		})
	}

	t.Run("concurrent change", func(t *testing.T) {
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(confirmedBooking(date, "07:00 - 08:00"), nil)
		f.repo.On("Cancel", mock.Anything, int64(10), mock.Anything, int64(42), mock.Anything).
			Return(bookingRepo.ErrStatusChanged)

		_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 42})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Empty(t, f.notifier.cancelled)
	})

	t.Run("reason too long", func(t *testing.T) {
		f := newFixture(now, nil)
		long := make([]rune, domain.MaxCancellationReasonLength+1)
		for i := range long {
			long[i] = 'x'
		}

		_, err := f.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
			UserID:             42,
			CancellationReason: ptr.Ptr(string(long)),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_AdminCancel_SkipsOwnershipAndLeadTime(t *testing.T) {
	now := time.Date(2025, 1, 10, 6, 45, 0, 0, ict)
	booking := confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, ict), "07:00 - 08:00")

	f := newFixture(now, nil)
	f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)
	f.repo.On("Cancel", mock.Anything, int64(10), (*string)(nil), int64(1), now).Return(nil)

	resp, err := f.svc.AdminCancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 1})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, []string{""}, f.notifier.reasons)
}

func TestService_Lifecycle(t *testing.T) {
	now := time.Date(2025, 1, 10, 7, 5, 0, 0, ict)
	booking := confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, ict), "07:00 - 08:00")

	f := newFixture(now, nil)
	f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)
	f.repo.On("CheckIn", mock.Anything, int64(10), now).Return(nil)
	f.repo.On("CheckOut", mock.Anything, int64(10), now).Return(nil)

	resp, err := f.svc.CheckIn(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "checked_in", resp.Status)
	assert.NotNil(t, resp.CheckInAt)

	resp, err = f.svc.CheckOut(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.CheckOutAt)

	// Повторный check-out из completed недопустим
	_, err = f.svc.CheckOut(context.Background(), 10)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []string{"checked_in", "completed"}, f.metrics.transitions)
}

func TestService_Transitions_InvalidState(t *testing.T) {
	now := time.Date(2025, 1, 10, 7, 5, 0, 0, ict)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, ict)

	t.Run("check-in of pending booking", func(t *testing.T) {
		booking := confirmedBooking(date, "07:00 - 08:00")
		booking.Status = domain.StatusPending
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)

		_, err := f.svc.CheckIn(context.Background(), 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.repo.AssertNotCalled(t, "CheckIn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("check-out without check-in timestamp", func(t *testing.T) {
		booking := confirmedBooking(date, "07:00 - 08:00")
		booking.Status = domain.StatusCheckedIn
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)

		_, err := f.svc.CheckOut(context.Background(), 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("no-show lost race", func(t *testing.T) {
		f := newFixture(now, nil)
		f.repo.On("GetByID", mock.Anything, int64(10)).Return(confirmedBooking(date, "07:00 - 08:00"), nil)
		f.repo.On("MarkNoShow", mock.Anything, int64(10), now).Return(bookingRepo.ErrStatusChanged)

		_, err := f.svc.MarkNoShow(context.Background(), 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Empty(t, f.metrics.transitions)
	})
}

func TestService_GetByID_Access(t *testing.T) {
	booking := confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, ict), "07:00 - 08:00")
	f := newFixture(time.Now(), nil)
	f.repo.On("GetByID", mock.Anything, int64(10)).Return(booking, nil)

	_, err := f.svc.GetByID(context.Background(), 10, domain.Identity{UserID: 42, Role: domain.RoleStudent})
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), 10, domain.Identity{UserID: 5, Role: domain.RoleStaff})
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), 10, domain.Identity{UserID: 5, Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_GetBookedSlots(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, ict)

	t.Run("cache hit", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Get", mock.Anything, int64(1), date).Return([]string{"07:00 - 08:00"}, true, nil)
		f := newFixture(time.Now(), cache)

		resp, err := f.svc.GetBookedSlots(context.Background(), 1, date)

		require.NoError(t, err)
		assert.Equal(t, []string{"07:00 - 08:00"}, resp.BookedSlots)
		f.repo.AssertNotCalled(t, "GetBookedSlots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache unavailable falls back to repository", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Get", mock.Anything, int64(1), date).Return(nil, false, errors.New("dial tcp: refused"))
		cache.On("Set", mock.Anything, int64(1), date, []string{"09:00 - 10:00"}).Return(errors.New("dial tcp: refused"))
		f := newFixture(time.Now(), cache)
		f.repo.On("GetBookedSlots", mock.Anything, int64(1), date).Return([]string{"09:00 - 10:00"}, nil)

		resp, err := f.svc.GetBookedSlots(context.Background(), 1, date)

		require.NoError(t, err)
		assert.Equal(t, "2025-01-10", resp.Date)
		assert.Equal(t, []string{"09:00 - 10:00"}, resp.BookedSlots)
	})

	t.Run("no cache and no bookings", func(t *testing.T) {
		f := newFixture(time.Now(), nil)
		f.repo.On("GetBookedSlots", mock.Anything, int64(1), date).Return(nil, nil)

		resp, err := f.svc.GetBookedSlots(context.Background(), 1, date)

		require.NoError(t, err)
		assert.NotNil(t, resp.BookedSlots)
		assert.Empty(t, resp.BookedSlots)
	})

	t.Run("invalid facility", func(t *testing.T) {
		f := newFixture(time.Now(), nil)
		_, err := f.svc.GetBookedSlots(context.Background(), 0, date)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_GetUserBookings_InvalidStatus(t *testing.T) {
	f := newFixture(time.Now(), nil)

	_, err := f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 42,
		Status: ptr.Ptr("in_progress"),
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_List(t *testing.T) {
	f := newFixture(time.Now(), nil)
	status := domain.StatusConfirmed
	f.repo.On("List", mock.Anything, domain.BookingsFilter{
		FacilityID: ptr.Ptr[int64](1),
		Status:     &status,
		Limit:      20,
	}).Return([]*domain.Booking{confirmedBooking(time.Date(2025, 1, 10, 0, 0, 0, 0, ict), "07:00 - 08:00")}, nil)

	resp, err := f.svc.List(context.Background(), &models.ListBookingsRequest{
		FacilityID: ptr.Ptr[int64](1),
		Status:     ptr.Ptr("confirmed"),
		Limit:      20,
	})

	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "2025-01-10", resp.Bookings[0].BookingDate)
}
