package harness

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/config"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/stats"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/sweep"
)

func newTestHarness(t *testing.T, tests string, globalDuration int) (*Harness, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.InputFile = "input.mp4"
	cfg.TestsJSON = tests
	cfg.Duration = globalDuration
	return New(Options{Config: cfg, Console: &console}), &console
}

// =============================================================================
// Tests: batch validation
// =============================================================================

func TestValidateAll_GlobalDurationOverride(t *testing.T) {
	h, _ := newTestHarness(t, "", 45)

	configs, err := h.validateAll([]sweep.Case{
		{QP: intPtr(35)},
		{QP: intPtr(30), Duration: intPtr(120)},
	})
	if err != nil {
		t.Fatalf("validateAll() error = %v", err)
	}
	for i, cfg := range configs {
		if cfg.Duration != 45 {
			t.Errorf("config %d Duration = %d, want global override 45", i, cfg.Duration)
		}
	}
}

func TestValidateAll_KeepsPerTestDurationWithoutOverride(t *testing.T) {
	h, _ := newTestHarness(t, "", 0)

	configs, err := h.validateAll([]sweep.Case{{QP: intPtr(35), Duration: intPtr(120)}})
	if err != nil {
		t.Fatalf("validateAll() error = %v", err)
	}
	if configs[0].Duration != 120 {
		t.Errorf("Duration = %d, want 120", configs[0].Duration)
	}
}

func TestValidateAll_StopsOnFirstBadCase(t *testing.T) {
	h, _ := newTestHarness(t, "", 0)

	_, err := h.validateAll([]sweep.Case{
		{QP: intPtr(35)},
		{}, // missing qp and crf
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "test 2") {
		t.Errorf("error should name the failing test: %v", err)
	}
}

func TestValidateAll_DowngradeWarningReachesConsoleAndObserver(t *testing.T) {
	h, console := newTestHarness(t, "", 0)
	h.hwSupported = func() bool { return false }

	var events []Event
	h.notify = func(ev Event) { events = append(events, ev) }

	configs, err := h.validateAll([]sweep.Case{{QP: intPtr(35), HW: 1}})
	if err != nil {
		t.Fatalf("validateAll() error = %v", err)
	}
	if configs[0].Hardware {
		t.Error("trial should downgrade to software")
	}
	if !strings.Contains(console.String(), "falling back to software") {
		t.Errorf("warning should reach the console, got %q", console.String())
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	notice, ok := events[0].(Notice)
	if !ok {
		t.Fatalf("event = %T, want Notice", events[0])
	}
	if !strings.Contains(notice.Message, "falling back to software") {
		t.Errorf("Notice.Message = %q", notice.Message)
	}
}

// =============================================================================
// Tests: -print-cmd mode
// =============================================================================

func TestPrintCommands(t *testing.T) {
	h, console := newTestHarness(t, `[{"qp":35,"scale":"1080p","codec":"x265"},{"crf":23,"codec":"x264"}]`, 0)

	if err := h.PrintCommands(); err != nil {
		t.Fatalf("PrintCommands() error = %v", err)
	}

	out := console.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d commands, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "-qp 35") || !strings.Contains(lines[0], "libx265") {
		t.Errorf("first command wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "-crf 23") || !strings.Contains(lines[1], "libx264") {
		t.Errorf("second command wrong: %q", lines[1])
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "ffmpeg -y -i input.mp4") {
			t.Errorf("command should start with the binary and input: %q", line)
		}
	}
}

func TestPrintCommands_MalformedJSON(t *testing.T) {
	h, _ := newTestHarness(t, `[{"qp":`, 0)
	if err := h.PrintCommands(); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestPrintCommands_OutputDirJoined(t *testing.T) {
	var console bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.InputFile = "input.mp4"
	cfg.OutputDir = "/tmp/sweep"
	cfg.TestsJSON = `[{"qp":35}]`
	h := New(Options{Config: cfg, Console: &console})

	if err := h.PrintCommands(); err != nil {
		t.Fatalf("PrintCommands() error = %v", err)
	}
	if !strings.Contains(console.String(), "/tmp/sweep/output_qp35_presetmedium_x265_original.mp4") {
		t.Errorf("output path should be joined with -output-dir: %q", console.String())
	}
}

// =============================================================================
// Tests: result construction
// =============================================================================

func TestBuildResult_CarriesInputAndDuration(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	output := filepath.Join(dir, "output.mp4")
	if err := os.WriteFile(input, make([]byte, 2000), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(output, make([]byte, 1000), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := sweep.TestConfig{QP: 35, Codec: sweep.CodecX265}
	res, err := buildResult(cfg, input, output, 10, 3*time.Second, stats.NewSpeedTracker())
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}

	if res.InputFile != input {
		t.Errorf("InputFile = %q, want %q", res.InputFile, input)
	}
	if res.DurationSec != 10 {
		t.Errorf("DurationSec = %v, want 10", res.DurationSec)
	}
	if res.OutputSize != 1000 {
		t.Errorf("OutputSize = %d, want 1000", res.OutputSize)
	}
	if math.Abs(res.Ratio-2) > 1e-9 {
		t.Errorf("Ratio = %v, want 2", res.Ratio)
	}
	if math.Abs(res.BitrateMbps-stats.Bitrate(1000, 10)) > 1e-9 {
		t.Errorf("BitrateMbps = %v", res.BitrateMbps)
	}
}

func TestBuildResult_EmptyOutputIsError(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := buildResult(sweep.TestConfig{}, input, filepath.Join(dir, "missing.mp4"),
		10, time.Second, stats.NewSpeedTracker())
	if err == nil {
		t.Fatal("empty output must fail the trial")
	}
}

func intPtr(n int) *int { return &n }
