package observability

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report engine activity.
type Metrics struct {
	embatesCreated *prometheus.CounterVec
	embatesActive  prometheus.Gauge
	stageDuration  *prometheus.HistogramVec
	stageFailures  *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the instance registered with the global registry.
// Collectors are created once so repeated construction does not panic.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the engine collectors on reg. Tests should pass a
// fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		embatesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embate",
				Name:      "created_total",
				Help:      "Embates created, by type and resulting status.",
			},
			[]string{"type", "status"},
		),
		embatesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "embate",
				Name:      "in_flight",
				Help:      "Embates whose strategy is currently executing.",
			},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "embate",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration spent in each pipeline stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "status"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embate",
				Subsystem: "pipeline",
				Name:      "stage_failures_total",
				Help:      "Pipeline stages that ended in failure.",
			},
			[]string{"stage"},
		),
	}

	m.embatesCreated = register(reg, m.embatesCreated)
	m.embatesActive = register(reg, m.embatesActive)
	m.stageDuration = register(reg, m.stageDuration)
	m.stageFailures = register(reg, m.stageFailures)
	return m
}

// register reuses an already-registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) IncCreated(typ, status string) {
	if m == nil {
		return
	}
	m.embatesCreated.WithLabelValues(typ, status).Inc()
}

func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.embatesActive.Inc()
}

func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.embatesActive.Dec()
}

// ObserveStage records a stage's duration and, on failure, bumps the failure counter.
func (m *Metrics) ObserveStage(stage, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
	if status == "failure" {
		m.stageFailures.WithLabelValues(stage).Inc()
	}
}
