package config

import (
	"errors"
	"fmt"
	"os"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or a joined error describing every problem.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.InputFile == "" {
		errs = append(errs, ValidationError{
			Field:   "i",
			Message: "input file is required",
		})
	} else if _, err := os.Stat(cfg.InputFile); err != nil {
		errs = append(errs, ValidationError{
			Field:   "i",
			Message: fmt.Sprintf("input file not found: %s", cfg.InputFile),
		})
	}

	if cfg.TestsJSON == "" {
		errs = append(errs, ValidationError{
			Field:   "tests",
			Message: "test array is required",
		})
	}

	if cfg.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "duration",
			Message: "must not be negative",
		})
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf(`must be "json" or "text" (got %q)`, cfg.LogFormat),
		})
	}

	// The TUI and the in-place progress display fight over the terminal;
	// print-cmd exits before either starts, so it is exempt.
	if cfg.TUIEnabled && cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "tui",
			Message: "cannot be combined with -print-cmd",
		})
	}

	return errors.Join(errs...)
}
