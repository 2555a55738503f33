package strategy

import (
	"time"

	"github.com/Promptonauts/embate/pkg/observability"
)

// callStats tracks calls, failures, in-flight work and latency for one
// strategy type. It is shared by every instance its factory hands out.
type callStats struct {
	reg *observability.MetricsRegistry
}

func newCallStats() *callStats {
	reg := observability.NewMetricsRegistry()
	// Register up front so Metrics reports zeros before the first call.
	reg.Counter("calls")
	reg.Counter("failures")
	reg.Gauge("in_flight")
	reg.Histogram("latency_ms")
	return &callStats{reg: reg}
}

// begin marks a call in flight. The returned func records its outcome.
func (c *callStats) begin() func(err error) {
	start := time.Now()
	c.reg.Gauge("in_flight").Inc()
	return func(err error) {
		c.reg.Gauge("in_flight").Dec()
		c.reg.Counter("calls").Inc()
		if err != nil {
			c.reg.Counter("failures").Inc()
		}
		c.reg.Histogram("latency_ms").Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (c *callStats) snapshot() map[string]any {
	return c.reg.Snapshot()
}
