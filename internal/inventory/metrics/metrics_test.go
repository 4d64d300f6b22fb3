package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ReservationOutcome(OutcomeReserved)
	m.ReservationOutcome(OutcomeReserved)
	m.ReservationOutcome(OutcomeDeclined)
	m.Retry("reserve", "conflict")
	m.Release("expired", ReleaseApplied)
	m.PublishFailure("STOCK_RESERVED")
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservations.WithLabelValues(OutcomeReserved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservations.WithLabelValues(OutcomeDeclined)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("reserve", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releases.WithLabelValues("expired", ReleaseApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishFailures.WithLabelValues("STOCK_RESERVED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestMetrics_Sweep(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSweep(20*time.Millisecond, 3, 1)
	m.ObserveSweep(10*time.Millisecond, 2, 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.sweepReleased))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sweepDuration))
}

func TestMetrics_Requests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("POST", "/api/inventory/reservations", 200, time.Millisecond)

	expected := `
# HELP inventory_service_requests_total Total number of requests to inventory service
# TYPE inventory_service_requests_total counter
inventory_service_requests_total{endpoint="/api/inventory/reservations",method="POST",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "inventory_service_requests_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ReservationOutcome(OutcomeError)
		m.ObserveSweep(time.Second, 1, 1)
		m.CacheLookup(true)
	})
}
