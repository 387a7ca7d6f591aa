// Package process provides abstractions for running the external encoder
// and prober binaries.
package process

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/sweep"
)

// EncodeRunner renders one validated trial into an FFmpeg invocation.
//
// The argument layout is positional and strict: hardware device setup must
// precede input binding, the filter graph precedes codec selection, and the
// output path is always last. Identical configs always produce identical
// argument slices.
type EncodeRunner struct {
	binary string
	cfg    sweep.TestConfig
	input  string
	output string
}

// NewEncodeRunner creates a runner for one trial.
func NewEncodeRunner(binary string, cfg sweep.TestConfig, input, output string) *EncodeRunner {
	return &EncodeRunner{
		binary: binary,
		cfg:    cfg,
		input:  input,
		output: output,
	}
}

// Name returns "ffmpeg".
func (r *EncodeRunner) Name() string {
	return "ffmpeg"
}

// Output returns the output artifact path.
func (r *EncodeRunner) Output() string {
	return r.output
}

// Hardware reports whether this trial runs the VAAPI path.
func (r *EncodeRunner) Hardware() bool {
	return r.cfg.Hardware
}

// BuildCommand creates a ready-to-start exec.Cmd for the trial.
func (r *EncodeRunner) BuildCommand(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, r.binary, r.BuildArgs()...)
}

// BuildArgs constructs the FFmpeg command-line arguments.
func (r *EncodeRunner) BuildArgs() []string {
	args := []string{"-y"}

	// Hardware device selection must precede input binding.
	if r.cfg.Hardware {
		args = append(args,
			"-hwaccel", "vaapi",
			"-hwaccel_device", sweep.RenderNodePath,
			"-hwaccel_output_format", "vaapi",
		)
	}

	args = append(args, "-i", r.input)

	if r.cfg.Duration > 0 {
		args = append(args, "-t", strconv.Itoa(r.cfg.Duration))
	}

	if vf := r.filterGraph(); vf != "" {
		args = append(args, "-vf", vf)
	}

	args = append(args, r.codecArgs()...)

	// Audio is never re-encoded.
	args = append(args, "-c:a", "copy")

	args = append(args, r.output)

	return args
}

// filterGraph renders the -vf value for the trial. The hardware path always
// emits a graph (frames must be uploaded to the device even with no scaling);
// the software path omits the flag entirely when neither scale nor fps is
// requested.
func (r *EncodeRunner) filterGraph() string {
	var stages []string

	if r.cfg.Hardware {
		stages = append(stages, "format=vaapi", "hwupload")
		if h := r.cfg.Scale.TargetHeight(); h > 0 {
			stages = append(stages, fmt.Sprintf("scale_vaapi=-2:%d", h))
		}
	} else {
		if h := r.cfg.Scale.TargetHeight(); h > 0 {
			// -2 keeps the width even while preserving aspect ratio.
			stages = append(stages, fmt.Sprintf("scale=-2:%d", h))
		}
	}

	if r.cfg.FPS > 0 {
		stages = append(stages, fmt.Sprintf("fps=%d", r.cfg.FPS))
	}

	return strings.Join(stages, ",")
}

// codecArgs renders encoder selection, quality, and preset.
//
// The hardware path always uses -qp: VAAPI encoders have no CRF rate
// control, so a requested crf is ignored there. The software path prefers
// -crf when present and never emits both quality flags.
func (r *EncodeRunner) codecArgs() []string {
	if r.cfg.Hardware {
		return []string{
			"-c:v", hardwareEncoder(r.cfg.Codec),
			"-qp", strconv.Itoa(r.cfg.QP),
			"-preset", r.cfg.Preset.String(),
		}
	}

	args := []string{"-c:v", softwareEncoder(r.cfg.Codec)}
	if r.cfg.CRF != nil {
		args = append(args, "-crf", strconv.Itoa(*r.cfg.CRF))
	} else {
		args = append(args, "-qp", strconv.Itoa(r.cfg.QP))
	}
	return append(args, "-preset", r.cfg.Preset.String())
}

// hardwareEncoder maps a codec to its VAAPI encoder name.
func hardwareEncoder(c sweep.Codec) string {
	switch c {
	case sweep.CodecX264:
		return "h264_vaapi"
	case sweep.CodecAV1:
		return "av1_vaapi"
	default:
		return "hevc_vaapi"
	}
}

// softwareEncoder maps a codec to its software encoder name.
func softwareEncoder(c sweep.Codec) string {
	switch c {
	case sweep.CodecX264:
		return "libx264"
	case sweep.CodecAV1:
		return "libsvtav1"
	default:
		return "libx265"
	}
}

// CommandString returns the command that would be executed (for -print-cmd
// and pre-launch echo).
func (r *EncodeRunner) CommandString() string {
	return r.binary + " " + strings.Join(r.BuildArgs(), " ")
}
