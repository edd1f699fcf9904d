package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type recordingPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	bodies   [][]byte
	keys     []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, key)
	p.bodies = append(p.bodies, body)
	return nil
}

func (p *recordingPublisher) snapshot() (int, []string, [][]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, append([]string(nil), p.keys...), append([][]byte(nil), p.bodies...)
}

type staticContacts struct{}

func (staticContacts) Recipient(_ context.Context, userID int64) (*userservice.Contact, bool) {
	return &userservice.Contact{ID: userID, Email: "student@uni.test", FullName: "Student"}, true
}

func fastOptions() Options {
	return Options{
		BufferSize:     4,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:          7,
		UserID:      42,
		FacilityID:  1,
		BookingDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:    "07:00 - 08:00",
		Price:       180000,
	}
}

func TestDispatcher_DeliversWithRetry(t *testing.T) {
	pub := &recordingPublisher{failures: 2}
	d := NewDispatcher(pub, staticContacts{}, logger.NewNop(), fastOptions())
	d.Start(context.Background())

	d.NotifyBookingConfirmed(testBooking())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)

	calls, keys, bodies := pub.snapshot()
	assert.Equal(t, 3, calls)
	require.Len(t, bodies, 1)
	assert.Equal(t, []string{string(EventBookingConfirmed)}, keys)

	var ev Event
	require.NoError(t, json.Unmarshal(bodies[0], &ev))
	assert.Equal(t, int64(7), ev.BookingID)
	assert.Equal(t, "2025-01-10", ev.Date)
	assert.Equal(t, "student@uni.test", ev.Email)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	pub := &recordingPublisher{failures: 10}
	d := NewDispatcher(pub, nil, logger.NewNop(), fastOptions())
	d.Start(context.Background())

	d.NotifyBookingCancelled(testBooking(), "rain")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)

	calls, _, bodies := pub.snapshot()
	assert.Equal(t, 3, calls)
	assert.Empty(t, bodies)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	pub := &recordingPublisher{}
	// воркеры не запущены: буфер заполняется и лишние события отбрасываются
	d := NewDispatcher(pub, nil, logger.NewNop(), Options{BufferSize: 1})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.NotifyRentalCancelled(&domain.EquipmentRental{ID: int64(i), UserID: 42})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked")
	}
	assert.Len(t, d.queue, 1)
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(&recordingPublisher{}, nil, logger.NewNop(), fastOptions())
	d.Start(context.Background())
	d.Stop(context.Background())

	assert.NotPanics(t, func() { d.NotifyBookingPaymentFailed(testBooking()) })
}
