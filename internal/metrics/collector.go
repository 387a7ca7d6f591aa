// Package metrics provides Prometheus metrics for go-ffmpeg-qp-sweep.
//
// The sweep is a batch process, so the metrics are snapshot-style: they
// describe the batch in flight and are most useful when a run is long
// enough to scrape (large inputs, many trials).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweepInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "qp_sweep_info",
			Help: "Information about the sweep (value always 1)",
		},
		[]string{"version", "input"},
	)

	sweepTestsPlanned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qp_sweep_tests_planned",
			Help: "Number of trials in the batch",
		},
	)

	sweepTestsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qp_sweep_tests_completed_total",
			Help: "Trials finished successfully",
		},
	)

	sweepTestsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qp_sweep_tests_failed_total",
			Help: "Trials aborted with an error",
		},
	)

	sweepActiveTest = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "qp_sweep_active_test",
			Help: "The trial currently encoding (value always 1)",
		},
		[]string{"label", "mode"},
	)

	sweepEncodeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qp_sweep_encode_seconds",
			Help:    "Wall-clock encode time per trial",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	sweepOutputBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qp_sweep_output_bytes_total",
			Help: "Total bytes written across all trial outputs",
		},
	)

	sweepEncodeSpeed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qp_sweep_encode_speed",
			Help: "Most recent encode speed sample (realtime multiple)",
		},
	)

	sweepElapsedSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qp_sweep_elapsed_seconds",
			Help: "Seconds since the batch started",
		},
	)
)

// Collector manages the sweep's Prometheus metrics.
type Collector struct {
	startTime time.Time
}

// CollectorConfig holds batch-level metadata exposed as labels.
type CollectorConfig struct {
	Version      string
	Input        string
	PlannedTests int
}

// NewCollector registers the sweep metrics with the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry registers with a custom registry. Useful for
// testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{startTime: time.Now()}

	registry.MustRegister(
		sweepInfo,
		sweepTestsPlanned,
		sweepTestsCompletedTotal,
		sweepTestsFailedTotal,
		sweepActiveTest,
		sweepEncodeSeconds,
		sweepOutputBytesTotal,
		sweepEncodeSpeed,
		sweepElapsedSeconds,
	)

	sweepInfo.WithLabelValues(cfg.Version, cfg.Input).Set(1)
	sweepTestsPlanned.Set(float64(cfg.PlannedTests))

	return c
}

// SetPlanned publishes the batch size. Called by the driver once the test
// array is parsed, which is after the collector is constructed.
func (c *Collector) SetPlanned(n int) {
	sweepTestsPlanned.Set(float64(n))
}

// TestStarted marks a trial as the active one.
func (c *Collector) TestStarted(label, mode string) {
	sweepActiveTest.Reset()
	sweepActiveTest.WithLabelValues(label, mode).Set(1)
	sweepElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}

// TestCompleted records a finished trial.
func (c *Collector) TestCompleted(elapsed time.Duration, outputBytes int64) {
	sweepTestsCompletedTotal.Inc()
	sweepEncodeSeconds.Observe(elapsed.Seconds())
	sweepOutputBytesTotal.Add(float64(outputBytes))
	sweepActiveTest.Reset()
	sweepElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}

// TestFailed records an aborted trial.
func (c *Collector) TestFailed() {
	sweepTestsFailedTotal.Inc()
	sweepActiveTest.Reset()
}

// RecordSpeed publishes the latest encode speed sample.
func (c *Collector) RecordSpeed(speed float64) {
	if speed > 0 {
		sweepEncodeSpeed.Set(speed)
	}
}
