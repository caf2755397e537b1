// Package metrics exposes prometheus collectors for distance sampling runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels of dualorbit_sample_runs_total.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector records sampling activity. A nil *Collector is valid and records nothing.
type Collector struct {
	samples     prometheus.Counter
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	maxDistance prometheus.Gauge
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dualorbit_samples_total",
			Help: "Total number of distance samples evaluated.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dualorbit_sample_runs_total",
			Help: "Total number of sampling runs by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dualorbit_sample_duration_seconds",
			Help:    "Duration of a sampling run in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		maxDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dualorbit_max_distance",
			Help: "Maximum separation observed by the latest successful sampling run.",
		}),
	}
	for _, col := range []prometheus.Collector{c.samples, c.runs, c.duration, c.maxDistance} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveRun records a completed sampling run.
func (c *Collector) ObserveRun(points int, maxDistance float64, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.duration.Observe(d.Seconds())
	if err != nil {
		c.runs.WithLabelValues(ResultError).Inc()
		return
	}
	c.runs.WithLabelValues(ResultOK).Inc()
	c.samples.Add(float64(points))
	c.maxDistance.Set(maxDistance)
}
