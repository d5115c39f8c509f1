package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing, which keeps handler tests free of registry setup.
type Metrics struct {
	DonationsSubmitted prometheus.Counter
	DonationsConfirmed prometheus.Counter
	PickupTransitions  *prometheus.CounterVec
	MatcherScans       prometheus.Counter
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DonationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlift_donations_submitted_total",
			Help: "Total number of donations submitted.",
		}),
		DonationsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlift_donations_confirmed_total",
			Help: "Total number of donations confirmed by charities.",
		}),
		PickupTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorlift_pickup_transitions_total",
			Help: "Pickup request status transitions applied, by target status.",
		}, []string{"to_status"}),
		MatcherScans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlift_matcher_scans_total",
			Help: "Volunteer availability matcher scans executed.",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donorlift_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) IncDonationsSubmitted() {
	if m == nil {
		return
	}
	m.DonationsSubmitted.Inc()
}

func (m *Metrics) IncDonationsConfirmed() {
	if m == nil {
		return
	}
	m.DonationsConfirmed.Inc()
}

func (m *Metrics) IncPickupTransition(toStatus string) {
	if m == nil {
		return
	}
	m.PickupTransitions.WithLabelValues(toStatus).Inc()
}

func (m *Metrics) IncMatcherScans() {
	if m == nil {
		return
	}
	m.MatcherScans.Inc()
}

func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
}
