// Package config provides configuration management for go-ffmpeg-qp-sweep.
package config

// Config holds all configuration options for the sweep.
type Config struct {
	// Sweep
	InputFile string `json:"input_file"`
	TestsJSON string `json:"tests_json"` // raw -tests argument
	Duration  int    `json:"duration"`   // global cap in seconds, 0 = full length
	OutputDir string `json:"output_dir"`

	// FFmpeg
	FFmpegPath string `json:"ffmpeg_path"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text

	// Dashboard
	TUIEnabled bool `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`
	ShowVersion   bool `json:"version"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  ".",
		FFmpegPath: "ffmpeg",
		LogFormat:  "text",
	}
}
