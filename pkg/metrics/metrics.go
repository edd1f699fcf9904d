// Package metrics содержит Prometheus-коллекторы сервиса
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор коллекторов HTTP, БД и бизнес-метрик
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// БД
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge

	// Бизнес-метрики
	BookingsCreated  prometheus.Counter
	BookingConflicts prometheus.Counter
	BookingStatus    *prometheus.CounterVec
	UnitsAllocated   prometheus.Counter
	UnitsReleased    prometheus.Counter
	AllocationFailed prometheus.Counter
	PaymentOutcomes  *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),

		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of created bookings",
			ConstLabels: labels,
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Total number of rejected bookings for an already taken slot",
			ConstLabels: labels,
		}),
		BookingStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_status_transitions_total",
			Help:        "Booking status transitions by target status",
			ConstLabels: labels,
		}, []string{"status"}),
		UnitsAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "equipment_units_allocated_total",
			Help:        "Total number of equipment units moved to rented",
			ConstLabels: labels,
		}),
		UnitsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "equipment_units_released_total",
			Help:        "Total number of equipment units returned to available",
			ConstLabels: labels,
		}),
		AllocationFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "equipment_allocation_failures_total",
			Help:        "Total number of rentals rejected for insufficient inventory",
			ConstLabels: labels,
		}),
		PaymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_outcomes_total",
			Help:        "Payment outcomes reported by the gateway",
			ConstLabels: labels,
		}, []string{"type", "outcome"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingsCreated,
		m.BookingConflicts,
		m.BookingStatus,
		m.UnitsAllocated,
		m.UnitsReleased,
		m.AllocationFailed,
		m.PaymentOutcomes,
	)

	return m
}
