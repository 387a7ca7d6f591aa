// Package sweep defines the encoding trial configuration: the loosely-typed
// JSON test cases supplied on the command line and the strict, validated
// TestConfig the rest of the harness consumes.
package sweep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Codec identifies the target video codec for a trial.
type Codec string

const (
	// CodecX264 encodes H.264/AVC (libx264 or h264_vaapi).
	CodecX264 Codec = "x264"

	// CodecX265 encodes H.265/HEVC (libx265 or hevc_vaapi). Default.
	CodecX265 Codec = "x265"

	// CodecAV1 encodes AV1 (libsvtav1 or av1_vaapi).
	CodecAV1 Codec = "av1"
)

// Scale identifies the output resolution class for a trial.
type Scale string

const (
	// ScaleOriginal keeps the source resolution (no scale filter). Default.
	ScaleOriginal Scale = "original"

	// Scale1080p scales to 1080 lines, width auto-computed.
	Scale1080p Scale = "1080p"

	// Scale4K scales to 2160 lines, width auto-computed.
	Scale4K Scale = "4k"
)

// TargetHeight returns the scale filter's target height in pixels.
// Zero means no scaling.
func (s Scale) TargetHeight() int {
	switch s {
	case Scale1080p:
		return 1080
	case Scale4K:
		return 2160
	default:
		return 0
	}
}

// Preset is the encoder speed/quality knob. Its representation is
// codec-discriminated: x264/x265 use a named tier ("medium"), SVT-AV1 uses a
// numeric tier in [0,13]. The discrimination is resolved once during
// validation and never re-inspected.
type Preset struct {
	Name    string // named tier, non-AV1 codecs
	Level   int    // numeric tier, AV1
	Numeric bool   // true when Level is authoritative
}

// String renders the preset the way it is passed to FFmpeg.
func (p Preset) String() string {
	if p.Numeric {
		return strconv.Itoa(p.Level)
	}
	return p.Name
}

// Case is one loosely-typed test object from the -tests JSON array.
// Pointer fields distinguish "absent" from zero values; preset stays raw
// because its type depends on the codec.
type Case struct {
	QP       *int            `json:"qp"`
	CRF      *int            `json:"crf"`
	Scale    string          `json:"scale"`
	FPS      *int            `json:"fps"`
	HW       int             `json:"hw"`
	Codec    string          `json:"codec"`
	Preset   json.RawMessage `json:"preset"`
	Duration *int            `json:"duration"`
}

// TestConfig is one fully validated encoding trial. Immutable once built.
type TestConfig struct {
	QP       int    // quantization level; 0 when only CRF is set
	CRF      *int   // rate-control factor; preferred over QP when present
	Scale    Scale
	FPS      int    // target frame rate; 0 keeps the source rate
	Hardware bool   // VAAPI path when true
	Codec    Codec
	Preset   Preset
	Duration int    // encode only the first N seconds; 0 = full length
}

// ConfigError reports an invalid test object. The index is zero-based.
type ConfigError struct {
	Index   int
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("test %d: %s", e.Index+1, e.Message)
}

// ParseBatch decodes the -tests argument into raw cases.
// The argument must be a JSON array of objects.
func ParseBatch(data string) ([]Case, error) {
	var cases []Case
	if err := json.Unmarshal([]byte(data), &cases); err != nil {
		return nil, fmt.Errorf("invalid JSON in -tests: %w", err)
	}
	return cases, nil
}

// Validate normalizes a raw case into a TestConfig, applying defaults and
// the hardware availability check.
//
// An unavailable hardware path is not an error: the trial is downgraded to
// software and a warning is written to warn (the user-facing stdout stream).
func Validate(index int, c Case, hwSupported func() bool, warn io.Writer) (TestConfig, error) {
	if c.QP == nil && c.CRF == nil {
		return TestConfig{}, &ConfigError{Index: index, Message: "either qp or crf is required"}
	}

	hw := c.HW == 1
	if hw && !hwSupported() {
		fmt.Fprintln(warn, "Warning: hardware acceleration unavailable, falling back to software encoding")
		hw = false
	}

	codec := Codec(c.Codec)
	if c.Codec == "" {
		codec = CodecX265
	}
	switch codec {
	case CodecX264, CodecX265, CodecAV1:
	default:
		return TestConfig{}, &ConfigError{
			Index:   index,
			Message: fmt.Sprintf("codec must be one of: x264, x265, av1 (got %q)", c.Codec),
		}
	}

	scale := Scale(c.Scale)
	if c.Scale == "" {
		scale = ScaleOriginal
	}
	switch scale {
	case ScaleOriginal, Scale1080p, Scale4K:
	default:
		return TestConfig{}, &ConfigError{
			Index:   index,
			Message: fmt.Sprintf("scale must be one of: original, 1080p, 4k (got %q)", c.Scale),
		}
	}

	preset, err := resolvePreset(codec, c.Preset)
	if err != nil {
		return TestConfig{}, &ConfigError{Index: index, Message: err.Error()}
	}

	fps := 0
	if c.FPS != nil {
		if *c.FPS <= 0 {
			return TestConfig{}, &ConfigError{Index: index, Message: "fps must be a positive integer"}
		}
		fps = *c.FPS
	}

	duration := 0
	if c.Duration != nil {
		if *c.Duration <= 0 {
			return TestConfig{}, &ConfigError{Index: index, Message: "duration must be a positive integer"}
		}
		duration = *c.Duration
	}

	qp := 0
	if c.QP != nil {
		qp = *c.QP
	}

	return TestConfig{
		QP:       qp,
		CRF:      c.CRF,
		Scale:    scale,
		FPS:      fps,
		Hardware: hw,
		Codec:    codec,
		Preset:   preset,
		Duration: duration,
	}, nil
}

// resolvePreset applies the codec-discriminated preset rules: AV1 presets
// must parse as an integer in [0,13] inclusive (default 8); every other
// codec takes the preset verbatim as a string (default "medium").
func resolvePreset(codec Codec, raw json.RawMessage) (Preset, error) {
	if codec == CodecAV1 {
		if len(raw) == 0 {
			return Preset{Level: 8, Numeric: true}, nil
		}
		level, err := presetAsInt(raw)
		if err != nil || level < 0 || level > 13 {
			return Preset{}, fmt.Errorf("av1 preset must be an integer between 0 and 13 (got %s)", rawString(raw))
		}
		return Preset{Level: level, Numeric: true}, nil
	}

	if len(raw) == 0 {
		return Preset{Name: "medium"}, nil
	}
	return Preset{Name: rawString(raw)}, nil
}

// presetAsInt accepts both JSON numbers (5) and numeric strings ("5").
func presetAsInt(raw json.RawMessage) (int, error) {
	return strconv.Atoi(rawString(raw))
}

// rawString renders a raw JSON scalar without quotes.
func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}

// OutputName derives the deterministic artifact name for a trial: the
// non-empty subset of {qp, crf, preset, codec, scale} labels joined by
// underscores, with the fixed "output_" prefix and ".mp4" extension.
func (c TestConfig) OutputName() string {
	var parts []string
	if c.QP != 0 {
		parts = append(parts, fmt.Sprintf("qp%d", c.QP))
	}
	if c.CRF != nil {
		parts = append(parts, fmt.Sprintf("crf%d", *c.CRF))
	}
	if p := c.Preset.String(); p != "" {
		parts = append(parts, "preset"+p)
	}
	parts = append(parts, string(c.Codec), string(c.Scale))
	return "output_" + strings.Join(parts, "_") + ".mp4"
}

// Mode returns the HW/SW label for the report table.
func (c TestConfig) Mode() string {
	if c.Hardware {
		return "HW"
	}
	return "SW"
}

// Label returns a short human-readable description for logs and the TUI.
func (c TestConfig) Label() string {
	quality := fmt.Sprintf("qp%d", c.QP)
	if c.CRF != nil {
		quality = fmt.Sprintf("crf%d", *c.CRF)
	}
	return fmt.Sprintf("%s %s %s %s", quality, c.Codec, c.Scale, c.Mode())
}
