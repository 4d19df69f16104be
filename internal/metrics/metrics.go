// Package metrics holds the Prometheus collectors of the registration API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration outcomes and HTTP request durations.
type Metrics struct {
	RegistrationsCreated  *prometheus.CounterVec
	RegistrationsRejected *prometheus.CounterVec
	StoreFailures         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
}

// New creates a Metrics instance with every collector registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confreg_registrations_created_total",
			Help: "Total number of registrations stored",
		}, []string{"type"}),
		RegistrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confreg_registrations_rejected_total",
			Help: "Total number of submissions rejected by validation",
		}, []string{"reason"}),
		StoreFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confreg_store_failures_total",
			Help: "Total number of record store failures by operation",
		}, []string{"operation"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "confreg_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
	}
}

// NewNoop returns collectors registered on a private registry, for tests and disabled exposition.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

// IncrementCreated records a stored registration of the given type.
func (m *Metrics) IncrementCreated(registrationType string) {
	m.RegistrationsCreated.WithLabelValues(registrationType).Inc()
}

// IncrementRejected records a submission rejected for reason.
func (m *Metrics) IncrementRejected(reason string) {
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}

// IncrementStoreFailure records a failed store operation.
func (m *Metrics) IncrementStoreFailure(operation string) {
	m.StoreFailures.WithLabelValues(operation).Inc()
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
