// Package harness drives the sweep: it validates each test case, probes the
// input, runs the encoder, and accumulates results for the final report.
package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/config"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/metrics"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/parser"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/process"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/report"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/stats"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/sweep"
)

// Event is a progress notification delivered to an optional observer (the
// TUI). Concrete types: Notice, TestStarted, TestProgress, TestFinished,
// BatchDone.
type Event interface{ isEvent() }

// Notice carries a user-facing warning (e.g. a hardware trial downgraded
// to software) so it survives even when the console stream is suppressed.
type Notice struct {
	Message string
}

// TestStarted announces the next trial.
type TestStarted struct {
	Index int // zero-based
	Total int
	Label string
}

// TestProgress carries one parsed encoder stats line.
type TestProgress struct {
	Index int
	Stats parser.StatsLine
}

// TestFinished reports a completed trial.
type TestFinished struct {
	Index  int
	Result stats.TestResult
}

// BatchDone reports the end of the batch. Err is nil on full success.
type BatchDone struct {
	Results []stats.TestResult
	Err     error
}

func (Notice) isEvent()       {}
func (TestStarted) isEvent()  {}
func (TestProgress) isEvent() {}
func (TestFinished) isEvent() {}
func (BatchDone) isEvent()    {}

// Harness executes a batch of encoding trials strictly in order.
type Harness struct {
	cfg         *config.Config
	logger      *slog.Logger
	console     io.Writer
	prober      *process.Prober
	collector   *metrics.Collector // optional
	notify      func(Event)        // optional
	hwSupported func() bool
}

// Options configures a Harness. Console is the user-facing stream and must
// be set; Collector and Notify are optional.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Console   io.Writer
	Collector *metrics.Collector
	Notify    func(Event)
}

// New creates a Harness.
func New(opts Options) *Harness {
	h := &Harness{
		cfg:         opts.Config,
		logger:      opts.Logger,
		console:     opts.Console,
		prober:      process.NewProber(opts.Config.FFmpegPath),
		collector:   opts.Collector,
		notify:      opts.Notify,
		hwSupported: sweep.HardwareSupported,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.console == nil {
		h.console = io.Discard
	}
	return h
}

func (h *Harness) emit(ev Event) {
	if h.notify != nil {
		h.notify(ev)
	}
}

// validateAll normalizes the whole batch up front, so a config error in
// test 5 is reported before test 1 spends minutes encoding.
//
// Validation warnings (hardware downgrades) go to the console and are also
// emitted as Notice events, so a suppressed console (TUI mode) still
// surfaces them.
func (h *Harness) validateAll(cases []sweep.Case) ([]sweep.TestConfig, error) {
	configs := make([]sweep.TestConfig, 0, len(cases))
	for i, c := range cases {
		var warn bytes.Buffer
		cfg, err := sweep.Validate(i, c, h.hwSupported, &warn)
		if warn.Len() > 0 {
			h.console.Write(warn.Bytes())
			for _, line := range strings.Split(strings.TrimSpace(warn.String()), "\n") {
				h.emit(Notice{Message: line})
			}
		}
		if err != nil {
			return nil, err
		}
		// The global cap overrides any per-test duration.
		if h.cfg.Duration > 0 {
			cfg.Duration = h.cfg.Duration
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// PrintCommands renders and prints the FFmpeg command for every trial
// without running anything (-print-cmd mode).
func (h *Harness) PrintCommands() error {
	cases, err := sweep.ParseBatch(h.cfg.TestsJSON)
	if err != nil {
		return err
	}
	configs, err := h.validateAll(cases)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		runner := h.runnerFor(cfg)
		fmt.Fprintln(h.console, runner.CommandString())
	}
	return nil
}

func (h *Harness) runnerFor(cfg sweep.TestConfig) *process.EncodeRunner {
	output := filepath.Join(h.cfg.OutputDir, cfg.OutputName())
	return process.NewEncodeRunner(h.cfg.FFmpegPath, cfg, h.cfg.InputFile, output)
}

// Run executes the batch. The first error aborts the remaining trials;
// results completed up to that point are still returned so the report can
// print what finished.
func (h *Harness) Run(ctx context.Context) ([]stats.TestResult, error) {
	cases, err := sweep.ParseBatch(h.cfg.TestsJSON)
	if err != nil {
		return nil, err
	}
	configs, err := h.validateAll(cases)
	if err != nil {
		return nil, err
	}
	if h.collector != nil {
		h.collector.SetPlanned(len(configs))
	}

	var results stats.Results
	for i, cfg := range configs {
		if err := ctx.Err(); err != nil {
			h.finish(results.All(), err)
			return results.All(), err
		}

		// Source summary before the first trial only.
		if i == 0 {
			h.printInputInfo(ctx)
		}

		res, err := h.runTest(ctx, i, len(configs), cfg)
		if err != nil {
			if h.collector != nil {
				h.collector.TestFailed()
			}
			h.finish(results.All(), err)
			return results.All(), fmt.Errorf("test %d: %w", i+1, err)
		}
		results.Add(res)
		h.emit(TestFinished{Index: i, Result: res})
	}

	h.finish(results.All(), nil)
	return results.All(), nil
}

func (h *Harness) finish(results []stats.TestResult, err error) {
	h.emit(BatchDone{Results: results, Err: err})
}

// printInputInfo probes the source stream and prints the summary block.
// A failed probe degrades to a placeholder record, never aborts.
func (h *Harness) printInputInfo(ctx context.Context) {
	info, err := h.prober.StreamInfo(ctx, h.cfg.InputFile)
	if err != nil {
		fmt.Fprintf(h.console, "Failed to read stream info: %v (continuing)\n", err)
		h.logger.Warn("stream_info_failed", "error", err)
	}
	report.PrintInputInfo(h.console, h.cfg.InputFile, info)
}

func (h *Harness) runTest(ctx context.Context, index, total int, cfg sweep.TestConfig) (stats.TestResult, error) {
	label := cfg.Label()
	fmt.Fprintf(h.console, "\nTest %d of %d: %s\n", index+1, total, label)
	h.emit(TestStarted{Index: index, Total: total, Label: label})
	if h.collector != nil {
		h.collector.TestStarted(label, cfg.Mode())
	}

	duration, err := h.prober.Duration(ctx, h.cfg.InputFile)
	if err != nil {
		return stats.TestResult{}, err
	}

	runner := h.runnerFor(cfg)
	fmt.Fprintf(h.console, "Running: %s\n", runner.CommandString())
	h.logger.Info("test_starting",
		"index", index+1,
		"total", total,
		"label", label,
		"output", runner.Output(),
	)

	tracker := stats.NewSpeedTracker()
	elapsed, err := process.RunEncode(ctx, runner, process.RunOptions{
		Console: h.console,
		OnProgress: func(s parser.StatsLine) {
			tracker.Add(s.Speed)
			if h.collector != nil {
				h.collector.RecordSpeed(s.Speed)
			}
			h.emit(TestProgress{Index: index, Stats: s})
		},
	})
	if err != nil {
		return stats.TestResult{}, err
	}

	res, err := buildResult(cfg, h.cfg.InputFile, runner.Output(), duration, elapsed, tracker)
	if err != nil {
		return stats.TestResult{}, err
	}

	if h.collector != nil {
		h.collector.TestCompleted(elapsed, res.OutputSize)
	}
	h.logger.Info("test_completed",
		"index", index+1,
		"output", res.OutputFile,
		"size_bytes", res.OutputSize,
		"bitrate_mbps", res.BitrateMbps,
		"ratio", res.Ratio,
		"elapsed", elapsed,
	)

	return res, nil
}

// buildResult derives the trial measurements from the filesystem state
// after the encoder exits.
func buildResult(cfg sweep.TestConfig, input, output string, durationSec float64, elapsed time.Duration, tracker *stats.SpeedTracker) (stats.TestResult, error) {
	inputSize := fileSize(input)
	outputSize := fileSize(output)

	ratio, err := stats.CompressionRatio(inputSize, outputSize)
	if err != nil {
		return stats.TestResult{}, err
	}

	return stats.TestResult{
		Config:      cfg,
		InputFile:   input,
		OutputFile:  output,
		OutputSize:  outputSize,
		BitrateMbps: stats.Bitrate(outputSize, durationSec),
		Ratio:       ratio,
		DurationSec: durationSec,
		Elapsed:     elapsed,
		SpeedP50:    tracker.P50(),
		SpeedP95:    tracker.P95(),
	}, nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
