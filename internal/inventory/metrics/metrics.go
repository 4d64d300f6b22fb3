package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcomes
const (
	OutcomeReserved = "reserved"
	OutcomeDeclined = "declined"
	OutcomeError    = "error"
)

// Release outcomes
const (
	ReleaseApplied = "released"
	ReleaseNoop    = "noop"
)

// Metrics holds the inventory service collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	reservations    *prometheus.CounterVec
	retries         *prometheus.CounterVec
	releases        *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
	sweepReleased   prometheus.Counter
	sweepFailures   prometheus.Counter
	stockUpdates    *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_service_requests_total",
				Help: "Total number of requests to inventory service",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_service_request_duration_seconds",
				Help:    "Duration of inventory service requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		reservations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_reservations_total",
				Help: "Reservation requests by outcome",
			},
			[]string{"outcome"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_retries_total",
				Help: "Reserve and release attempts re-run after contention",
			},
			[]string{"op", "reason"},
		),
		releases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_releases_total",
				Help: "Reservation releases by reason and outcome",
			},
			[]string{"reason", "outcome"},
		),
		sweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inventory_reaper_sweep_duration_seconds",
				Help:    "Duration of expiry reaper sweeps",
				Buckets: prometheus.DefBuckets,
			},
		),
		sweepReleased: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "inventory_reaper_released_total",
				Help: "Reservations released by the expiry reaper",
			},
		),
		sweepFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "inventory_reaper_failures_total",
				Help: "Expired reservations the reaper failed to release",
			},
		),
		stockUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_updates_total",
				Help: "Stock-in and adjustment requests by result",
			},
			[]string{"result"},
		),
		publishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_event_publish_failures_total",
				Help: "Domain events that could not be published",
			},
			[]string{"event_type"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_availability_cache_lookups_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
	m.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ReservationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Retry(op, reason string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) Release(reason, outcome string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(reason, outcome).Inc()
}

func (m *Metrics) ObserveSweep(elapsed time.Duration, released, failed int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(elapsed.Seconds())
	m.sweepReleased.Add(float64(released))
	m.sweepFailures.Add(float64(failed))
}

func (m *Metrics) StockUpdate(result string) {
	if m == nil {
		return
	}
	m.stockUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) PublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(eventType).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
