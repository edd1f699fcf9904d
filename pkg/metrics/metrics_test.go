package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.BookingConflict()
		m.BookingTransition("confirmed")
		m.UnitsRented(2)
		m.UnitsReturned(2)
		m.InsufficientInventory()
		m.PaymentOutcome("booking", "success")
	})
}

func TestRecorder_Counts(t *testing.T) {
	m := NewWithRegisterer("test", prometheus.NewRegistry())

	m.BookingCreated()
	m.BookingCreated()
	m.UnitsRented(3)
	m.PaymentOutcome("booking", "failed")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.BookingsCreated))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.UnitsAllocated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PaymentOutcomes.WithLabelValues("booking", "failed")))
}
