package preflight

import (
	"strings"
	"testing"
)

// =============================================================================
// Table-Driven Tests: version extraction
// =============================================================================

func TestVersionFromOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "standard banner",
			output: "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc",
			want:   "6.1.1",
		},
		{
			name:   "git build",
			output: "ffprobe version n7.0-git Copyright (c) 2007-2024",
			want:   "n7.0-git",
		},
		{
			name:   "unexpected output",
			output: "something else entirely",
			want:   "unknown",
		},
		{
			name:   "empty",
			output: "",
			want:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionFromOutput(tt.output); got != tt.want {
				t.Errorf("versionFromOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Tests: check behavior
// =============================================================================

func TestCheckBinary_Missing(t *testing.T) {
	check := checkBinary("ffmpeg", "/nonexistent/path/to/ffmpeg")
	if check.Passed {
		t.Error("missing binary must fail the check")
	}
	if !strings.Contains(check.Message, "not found") {
		t.Errorf("Message = %q, want not found", check.Message)
	}
}

func TestRunAll_MissingFFprobeIsWarning(t *testing.T) {
	// ffprobe absence must never fail the run.
	result := RunAll("/nonexistent/ffmpeg", "/nonexistent/ffprobe")

	var probe *Check
	for i := range result.Checks {
		if result.Checks[i].Name == "ffprobe" {
			probe = &result.Checks[i]
		}
	}
	if probe == nil {
		t.Fatal("ffprobe check missing")
	}
	if !probe.Passed || !probe.Warning {
		t.Errorf("ffprobe check should pass with warning, got passed=%v warning=%v", probe.Passed, probe.Warning)
	}
}

func TestRunEssential_MissingFFmpegFails(t *testing.T) {
	result := RunEssential("/nonexistent/ffmpeg")
	if result.Passed {
		t.Error("missing ffmpeg must fail the essential check")
	}
	if len(result.Checks) != 1 || result.Checks[0].Name != "ffmpeg" {
		t.Errorf("essential run should contain only the ffmpeg check: %+v", result.Checks)
	}
}

func TestRunEssential_OmitsWarningChecks(t *testing.T) {
	result := RunEssential("/nonexistent/ffmpeg")
	for _, c := range result.Checks {
		if c.Name == "ffprobe" || c.Name == "vaapi" {
			t.Errorf("essential run must not include %s", c.Name)
		}
	}
}

func TestRunAll_MissingFFmpegFails(t *testing.T) {
	result := RunAll("/nonexistent/ffmpeg", "/nonexistent/ffprobe")
	if result.Passed {
		t.Error("missing ffmpeg must fail preflight")
	}
}

func TestCheck_String(t *testing.T) {
	failed := Check{Name: "ffmpeg", Passed: false, Message: "not found"}
	if !strings.Contains(failed.String(), "✗") {
		t.Errorf("failed check should render ✗: %q", failed.String())
	}

	warned := Check{Name: "vaapi", Passed: true, Warning: true, Message: "missing"}
	if !strings.Contains(warned.String(), "⚠") {
		t.Errorf("warning check should render ⚠: %q", warned.String())
	}

	ok := Check{Name: "ffmpeg", Passed: true, Message: "found"}
	if !strings.Contains(ok.String(), "✓") {
		t.Errorf("passing check should render ✓: %q", ok.String())
	}
}
