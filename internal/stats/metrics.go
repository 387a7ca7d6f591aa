// Package stats computes the per-trial measurements reported in the final
// table: output bitrate, compression ratio, and encode speed percentiles.
package stats

import (
	"fmt"
	"time"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/sweep"
)

// Bitrate returns the average bitrate in Mbps for a file of the given size
// encoded over the given duration. Zero when the duration is not positive.
func Bitrate(sizeBytes int64, durationSec float64) float64 {
	if durationSec <= 0 {
		return 0
	}
	return float64(sizeBytes) * 8 / (durationSec * 1e6)
}

// CompressionRatio returns inputSize/outputSize. A zero-byte output is an
// error rather than an infinite ratio: it almost always means the encode
// produced nothing useful.
func CompressionRatio(inputSize, outputSize int64) (float64, error) {
	if outputSize <= 0 {
		return 0, fmt.Errorf("output file is empty, cannot compute compression ratio")
	}
	return float64(inputSize) / float64(outputSize), nil
}

// TestResult is the measured outcome of one completed trial.
type TestResult struct {
	Config      sweep.TestConfig
	InputFile   string
	OutputFile  string
	OutputSize  int64
	BitrateMbps float64
	Ratio       float64
	DurationSec float64 // measured media duration of the source
	Elapsed     time.Duration
	SpeedP50    float64 // median encode speed (realtime multiple)
	SpeedP95    float64
}

// Results accumulates trial outcomes in batch order. Append-only.
type Results struct {
	results []TestResult
}

// Add records a completed trial.
func (r *Results) Add(res TestResult) {
	r.results = append(r.results, res)
}

// All returns the recorded results in completion order.
func (r *Results) All() []TestResult {
	return r.results
}

// Len returns the number of recorded results.
func (r *Results) Len() int {
	return len(r.results)
}
