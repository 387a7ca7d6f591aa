// Package report renders the user-facing output: the input file summary,
// the fixed-width results table, and the encode speed footnotes.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/process"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/stats"
)

// Column widths of the results table. The table is consumed by shell
// pipelines and diffed between runs, so the layout is fixed, not adaptive.
const (
	colFile    = 40
	colQP      = 4
	colCRF     = 5
	colPreset  = 8
	colScale   = 8
	colFPS     = 5
	colCodec   = 10
	colMode    = 6
	colSize    = 12
	colBitrate = 12
	colRatio   = 10
	colTime    = 10
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// PrintBanner writes the program banner.
func PrintBanner(w io.Writer, name, version string) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s %s", name, version)))
}

// PrintInputInfo writes the source file summary block shown before the
// first trial. A placeholder info record (failed stream probe) still prints
// with zeroed fields; the size always comes from the filesystem.
func PrintInputInfo(w io.Writer, path string, info process.VideoInfo) {
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(w, "\nInput file info:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "File: %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Size: %.1f MB\n", float64(info.Size)/1024/1024)
	fmt.Fprintf(w, "Resolution: %s\n", info.Resolution())
	fmt.Fprintf(w, "Bitrate: %d kbps\n", info.BitrateKbps)
	fmt.Fprintf(w, "FPS: %.2f\n", info.FPS)
	fmt.Fprintf(w, "Codec: %s (%s)\n", info.Codec, info.CodecLongName)
	fmt.Fprintln(w, rule)
}

// PrintResults writes the fixed-width results table, one row per trial in
// batch order, followed by the encode speed footnotes.
func PrintResults(w io.Writer, results []stats.TestResult) {
	header := headerLine()

	fmt.Fprintln(w, "\nTest results:")
	fmt.Fprintln(w, strings.Repeat("=", len(header)))
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, r := range results {
		fmt.Fprintln(w, FormatRow(r))
	}

	fmt.Fprintln(w, strings.Repeat("=", len(header)))

	printSpeedFootnotes(w, results)
}

func headerLine() string {
	return fmt.Sprintf(
		"%-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s",
		colFile, "File",
		colQP, "QP",
		colCRF, "CRF",
		colPreset, "Preset",
		colScale, "Scale",
		colFPS, "FPS",
		colCodec, "Codec",
		colMode, "Mode",
		colSize, "Size",
		colBitrate, "Bitrate",
		colRatio, "Ratio",
		colTime, "Time",
	)
}

// FormatRow renders one result as a table row. Absent values print as "-".
func FormatRow(r stats.TestResult) string {
	cfg := r.Config

	// The dash placeholder is reserved for crf and fps; qp prints its
	// literal value even when zero.
	qp := fmt.Sprintf("%d", cfg.QP)
	crf := "-"
	if cfg.CRF != nil {
		crf = fmt.Sprintf("%d", *cfg.CRF)
	}
	fps := "-"
	if cfg.FPS != 0 {
		fps = fmt.Sprintf("%d", cfg.FPS)
	}

	return fmt.Sprintf(
		"%-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s",
		colFile, filepath.Base(r.OutputFile),
		colQP, qp,
		colCRF, crf,
		colPreset, cfg.Preset.String(),
		colScale, string(cfg.Scale),
		colFPS, fps,
		colCodec, string(cfg.Codec),
		colMode, cfg.Mode(),
		colSize, fmt.Sprintf("%.1f MB", float64(r.OutputSize)/1024/1024),
		colBitrate, fmt.Sprintf("%.1f Mbps", r.BitrateMbps),
		colRatio, fmt.Sprintf("%.1fx", r.Ratio),
		colTime, fmt.Sprintf("%.1fs", r.Elapsed.Seconds()),
	)
}

// printSpeedFootnotes writes the per-trial encode speed percentiles for
// trials that produced speed samples.
func printSpeedFootnotes(w io.Writer, results []stats.TestResult) {
	any := false
	for _, r := range results {
		if r.SpeedP50 <= 0 {
			continue
		}
		if !any {
			fmt.Fprintln(w, "\nEncode speed (realtime multiple):")
			any = true
		}
		fmt.Fprintf(w, "  %-*s p50=%.2fx p95=%.2fx\n",
			colFile, filepath.Base(r.OutputFile), r.SpeedP50, r.SpeedP95)
	}
}
