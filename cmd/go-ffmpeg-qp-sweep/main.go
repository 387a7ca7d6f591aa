// Package main provides the go-ffmpeg-qp-sweep CLI entry point.
//
// go-ffmpeg-qp-sweep drives repeated FFmpeg encodes of one input file across
// qp/crf/scale/fps/codec and hardware/software sweeps, then prints a
// comparison table of size, bitrate, compression ratio, and encode time.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/config"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/harness"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/logging"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/metrics"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/preflight"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/process"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/report"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/stats"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-ffmpeg-qp-sweep
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	if cfg.ShowVersion {
		fmt.Printf("go-ffmpeg-qp-sweep %s\n", version)
		return 0
	}

	// When the TUI owns the terminal, logs would corrupt the display.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// -skip-preflight silences the ffprobe/render-node warnings but never
	// the ffmpeg check: a missing encoder is always a fatal startup error.
	var result *preflight.Result
	if cfg.SkipPreflight {
		result = preflight.RunEssential(cfg.FFmpegPath)
		if !result.Passed {
			preflight.PrintResults(result)
			return 1
		}
	} else {
		prober := process.NewProber(cfg.FFmpegPath)
		result = preflight.RunAll(cfg.FFmpegPath, prober.FFprobePath())
		preflight.PrintResults(result)
		if !result.Passed {
			return 1
		}
	}

	if cfg.PrintCmd {
		h := harness.New(harness.Options{Config: cfg, Logger: logger, Console: os.Stdout})
		if err := h.PrintCommands(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	logger.Info("starting",
		"version", version,
		"input", cfg.InputFile,
		"output_dir", cfg.OutputDir,
		"metrics_addr", cfg.MetricsAddr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			Version: version,
			Input:   cfg.InputFile,
		})
		server := metrics.NewServer(cfg.MetricsAddr, logger)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	if cfg.TUIEnabled {
		return runWithTUI(ctx, cfg, logger, collector)
	}

	report.PrintBanner(os.Stdout, "go-ffmpeg-qp-sweep", version)

	h := harness.New(harness.Options{
		Config:    cfg,
		Logger:    logger,
		Console:   os.Stdout,
		Collector: collector,
	})

	results, err := h.Run(ctx)
	if len(results) > 0 {
		report.PrintResults(os.Stdout, results)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runWithTUI runs the batch behind the live dashboard. The harness output
// stays off the terminal; the report prints after the dashboard closes.
func runWithTUI(ctx context.Context, cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) int {
	program := tui.NewProgram(tui.New(cfg.InputFile))

	h := harness.New(harness.Options{
		Config:    cfg,
		Logger:    logger,
		Console:   io.Discard,
		Collector: collector,
		Notify:    tui.Forward(program),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var results []stats.TestResult
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, runErr = h.Run(ctx)
	}()

	_, tuiErr := program.Run()
	// Quitting the dashboard aborts any trial still running.
	cancel()
	<-done
	if tuiErr != nil {
		fmt.Fprintf(os.Stderr, "Dashboard error: %v\n", tuiErr)
		return 1
	}

	if len(results) > 0 {
		report.PrintResults(os.Stdout, results)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}
