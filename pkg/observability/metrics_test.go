package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry_Snapshot(t *testing.T) {
	r := NewMetricsRegistry()
	for range 3 {
		r.Counter("calls").Inc()
	}
	r.Gauge("inflight").Inc()
	r.Gauge("inflight").Inc()
	r.Gauge("inflight").Dec()
	r.Histogram("latency_ms").Observe(10)
	r.Histogram("latency_ms").Observe(30)

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap["counter.calls"])
	assert.Equal(t, int64(1), snap["gauge.inflight"])
	assert.Equal(t, int64(2), snap["histogram.latency_ms.count"])
	assert.Equal(t, 40.0, snap["histogram.latency_ms.sum"])
	assert.Equal(t, 20.0, snap["histogram.latency_ms.avg"])
	assert.Equal(t, 30.0, snap["histogram.latency_ms.max"])
}

func TestMetricsRegistry_ConcurrentCounter(t *testing.T) {
	r := NewMetricsRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counter("calls").Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), r.Counter("calls").Value())
}

func TestHistogram_Empty(t *testing.T) {
	var h Histogram
	count, sum, avg := h.Snapshot()
	assert.Zero(t, count)
	assert.Zero(t, sum)
	assert.Zero(t, avg)
}

func TestMetrics_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.IncCreated("multiagent", "active")
	m.IncCreated("multiagent", "failed")
	m.IncCreated("multiagent", "failed")
	m.ObserveStage("analyst", "failure", 50*time.Millisecond)
	m.ObserveStage("researcher", "success", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.embatesCreated.WithLabelValues("multiagent", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageFailures.WithLabelValues("analyst")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.stageFailures.WithLabelValues("researcher")))

	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.embatesActive))
}

func TestMustNewMetrics_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	require.NotPanics(t, func() {
		second := MustNewMetrics(reg)
		second.IncCreated("analysis", "active")
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(first.embatesCreated.WithLabelValues("analysis", "active")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCreated("x", "active")
		m.ObserveStage("researcher", "success", time.Second)
		m.IncInFlight()
		m.DecInFlight()
	})
}
