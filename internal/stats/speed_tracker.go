package stats

import (
	"github.com/influxdata/tdigest"
)

// SpeedTracker summarizes the encode speed samples (the "speed=" realtime
// multiple from FFmpeg's stats lines) of a single trial. A t-digest keeps
// memory constant regardless of how many stats lines a long encode emits.
type SpeedTracker struct {
	digest *tdigest.TDigest
	count  int
}

// NewSpeedTracker creates an empty tracker.
func NewSpeedTracker() *SpeedTracker {
	return &SpeedTracker{
		digest: tdigest.NewWithCompression(100),
	}
}

// Add records one speed sample. Zero samples (FFmpeg reports N/A while
// warming up) are discarded.
func (t *SpeedTracker) Add(speed float64) {
	if speed <= 0 {
		return
	}
	t.digest.Add(speed, 1)
	t.count++
}

// Count returns the number of accepted samples.
func (t *SpeedTracker) Count() int {
	return t.count
}

// P50 returns the median encode speed, 0 with no samples.
func (t *SpeedTracker) P50() float64 {
	return t.quantile(0.50)
}

// P95 returns the 95th percentile encode speed, 0 with no samples.
func (t *SpeedTracker) P95() float64 {
	return t.quantile(0.95)
}

func (t *SpeedTracker) quantile(q float64) float64 {
	if t.count == 0 {
		return 0
	}
	return t.digest.Quantile(q)
}
