package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/parser"
)

// EncodeError reports a failed encoder run. The transcript holds every
// stderr line FFmpeg produced, for post-mortem display.
type EncodeError struct {
	ExitCode   int
	Hardware   bool
	Transcript []string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ffmpeg exited with status %d", e.ExitCode)
}

// vaapiChecklist is printed after a failed hardware run whose transcript
// mentions VAAPI. Each item is a concrete command the user can run.
const vaapiChecklist = `Possible VAAPI problems:
  1. Driver not installed. Check with:
       vainfo
  2. Render node missing or inaccessible. Check with:
       ls -l /dev/dri/renderD128
  3. User not in the video/render group. Check with:
       groups
  4. Encoder not built into FFmpeg. Check with:
       ffmpeg -hide_banner -encoders | grep vaapi`

// RunOptions controls the interactive behavior of an encode run.
type RunOptions struct {
	// Console receives the overwriting progress display and, on failure, the
	// transcript dump and diagnostics. Nil silences all of it.
	Console io.Writer

	// OnProgress is invoked for every parsed stats line. Optional.
	OnProgress func(parser.StatsLine)
}

// RunEncode launches the encoder and blocks until it exits, streaming
// stderr line by line. Progress lines are echoed to the console with a
// carriage return so they overwrite in place; everything is kept in a
// transcript. Returns the wall-clock elapsed time.
//
// On a non-zero exit the full transcript is dumped to the console, the
// VAAPI checklist is appended when it applies, and an *EncodeError is
// returned.
func RunEncode(ctx context.Context, r *EncodeRunner, opts RunOptions) (time.Duration, error) {
	cmd := r.BuildCommand(ctx)
	return run(cmd, r.Hardware(), opts)
}

func run(cmd *exec.Cmd, hardware bool, opts RunOptions) (time.Duration, error) {
	console := opts.Console
	if console == nil {
		console = io.Discard
	}

	// FFmpeg writes everything of interest to stderr.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	var transcript []string
	sawProgress := false

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	// FFmpeg terminates stats lines with a bare carriage return.
	scanner.Split(scanCRLines)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " ")
		if line == "" {
			continue
		}
		transcript = append(transcript, line)

		if !parser.IsProgressLine(line) {
			continue
		}
		sawProgress = true
		fmt.Fprintf(console, "\rProgress: %s", line)
		if opts.OnProgress != nil {
			if stats, ok := parser.ParseStatsLine(line); ok {
				opts.OnProgress(stats)
			}
		}
	}

	// A scan error (e.g. a token over the buffer cap) leaves stderr
	// undrained; Wait would block on the full pipe. Drain before waiting.
	scanErr := scanner.Err()
	if scanErr != nil {
		io.Copy(io.Discard, stderr)
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	// Terminate the in-place progress display.
	if sawProgress {
		fmt.Fprintln(console)
	}

	if waitErr == nil {
		if scanErr != nil {
			return elapsed, fmt.Errorf("read ffmpeg stderr: %w", scanErr)
		}
		return elapsed, nil
	}

	exitCode := -1
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	fmt.Fprintln(console, "FFmpeg output:")
	for _, line := range transcript {
		fmt.Fprintln(console, "  "+line)
	}
	if hardware && transcriptMentionsVAAPI(transcript) {
		fmt.Fprintln(console, vaapiChecklist)
	}

	return elapsed, &EncodeError{
		ExitCode:   exitCode,
		Hardware:   hardware,
		Transcript: transcript,
	}
}

// transcriptMentionsVAAPI reports whether any transcript line names VAAPI,
// case-insensitively.
func transcriptMentionsVAAPI(transcript []string) bool {
	for _, line := range transcript {
		if strings.Contains(strings.ToLower(line), "vaapi") {
			return true
		}
	}
	return false
}

// scanCRLines is a bufio.SplitFunc that treats both \r and \n as line
// terminators, so FFmpeg's in-place stats updates surface as lines.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		// Swallow a \n that immediately follows a \r.
		advance = i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
