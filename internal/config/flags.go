package config

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-ffmpeg-qp-sweep - batch FFmpeg encoding trials across qp/crf/scale/codec parameters

Usage:
  go-ffmpeg-qp-sweep -i <input> -tests '<json array>' [flags]

Sweep Flags:
`)
		printFlagCategory(fs, []string{"i", "tests", "duration", "output-dir"})

		fmt.Fprintf(os.Stderr, "\nFFmpeg:\n")
		printFlagCategory(fs, []string{"ffmpeg"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory(fs, []string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory(fs, []string{"print-cmd", "skip-preflight", "version"})

		fmt.Fprintf(os.Stderr, `
Test object keys:
  qp       quantization level (qp or crf required)
  crf      rate-control factor (preferred over qp for software encoders)
  scale    "original", "1080p", or "4k"
  fps      target frame rate (positive integer)
  hw       1 enables VAAPI hardware encoding
  codec    "x264", "x265" (default), or "av1"
  preset   encoder preset; integer 0-13 for av1, named tier otherwise
  duration encode only the first N seconds

Examples:
  # Single software trial
  go-ffmpeg-qp-sweep -i input.mp4 -tests '[{"qp":35,"scale":"1080p","fps":30,"codec":"x265"}]'

  # Compare hardware and software at the same quality
  go-ffmpeg-qp-sweep -i input.mp4 -tests '[{"qp":30,"hw":1},{"qp":30}]'

  # CRF sweep, first 60 seconds only
  go-ffmpeg-qp-sweep -i input.mp4 -duration 60 -tests '[{"crf":23},{"crf":28},{"crf":33}]'

`)
	}

	// Sweep flags
	fs.StringVar(&cfg.InputFile, "i", cfg.InputFile, "Input video file (required)")
	fs.StringVar(&cfg.TestsJSON, "tests", cfg.TestsJSON, "JSON array of test objects (required)")
	fs.IntVar(&cfg.Duration, "duration", cfg.Duration, "Encode only the first N seconds of every trial (overrides per-test duration)")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for output artifacts")

	// FFmpeg
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to FFmpeg binary (ffprobe resolved as sibling)")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (e.g. :9090, empty = disabled)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	// Diagnostics
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the FFmpeg command for every trial and exit")
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")
	fs.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	case "0":
		return "int"
	default:
		return "string"
	}
}
