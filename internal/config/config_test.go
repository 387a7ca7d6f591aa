package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.InputFile = writeTempInput(t)
	cfg.TestsJSON = `[{"qp":35}]`
	return cfg
}

// =============================================================================
// Tests: flag parsing
// =============================================================================

func parseArgs(t *testing.T, args ...string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, args)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	return cfg
}

func TestParseFlags_Defaults(t *testing.T) {
	cfg := parseArgs(t)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"FFmpegPath", cfg.FFmpegPath, "ffmpeg"},
		{"OutputDir", cfg.OutputDir, "."},
		{"LogFormat", cfg.LogFormat, "text"},
		{"Duration", cfg.Duration, 0},
		{"MetricsAddr", cfg.MetricsAddr, ""},
		{"TUIEnabled", cfg.TUIEnabled, false},
		{"SkipPreflight", cfg.SkipPreflight, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestParseFlags_AllSet(t *testing.T) {
	cfg := parseArgs(t,
		"-i", "movie.mp4",
		"-tests", `[{"crf":23}]`,
		"-duration", "60",
		"-output-dir", "/tmp/out",
		"-ffmpeg", "/opt/ffmpeg/bin/ffmpeg",
		"-metrics", ":9090",
		"-v",
		"-log-format", "json",
		"-tui",
		"-skip-preflight",
	)

	if cfg.InputFile != "movie.mp4" || cfg.TestsJSON != `[{"crf":23}]` {
		t.Errorf("sweep flags not parsed: %+v", cfg)
	}
	if cfg.Duration != 60 || cfg.OutputDir != "/tmp/out" {
		t.Errorf("duration/output-dir not parsed: %+v", cfg)
	}
	if !cfg.Verbose || cfg.LogFormat != "json" || cfg.MetricsAddr != ":9090" {
		t.Errorf("observability flags not parsed: %+v", cfg)
	}
	if !cfg.TUIEnabled || !cfg.SkipPreflight {
		t.Errorf("mode flags not parsed: %+v", cfg)
	}
}

// =============================================================================
// Table-Driven Tests: Validate
// =============================================================================

func TestValidate_OK(t *testing.T) {
	if err := Validate(validConfig(t)); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing input", func(c *Config) { c.InputFile = "" }, "i"},
		{"input not found", func(c *Config) { c.InputFile = "/nonexistent/in.mp4" }, "i"},
		{"missing tests", func(c *Config) { c.TestsJSON = "" }, "tests"},
		{"negative duration", func(c *Config) { c.Duration = -1 }, "duration"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"tui with print-cmd", func(c *Config) { c.TUIEnabled = true; c.PrintCmd = true }, "tui"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantField+":") {
				t.Errorf("error should name field %q: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidate_JoinsMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("joined error should unwrap to ValidationError, got %T", err)
	}
	for _, field := range []string{"i:", "tests:", "log-format:"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("joined error missing %q: %v", field, err)
		}
	}
}
