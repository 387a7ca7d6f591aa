package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/parser"
)

// ProbeError reports a failed probe of the source media.
type ProbeError struct {
	Path    string
	Message string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %s", e.Path, e.Message)
}

// VideoInfo describes the first video stream of a media file. A zero-valued
// VideoInfo (except Size) means the stream probe failed and the caller chose
// to continue anyway.
type VideoInfo struct {
	Width         int
	Height        int
	FPS           float64
	BitrateKbps   int64
	Size          int64 // container size in bytes, from the filesystem
	Codec         string
	CodecLongName string
}

// Resolution renders "WxH", or "unknown" for a placeholder record.
func (v VideoInfo) Resolution() string {
	if v.Width == 0 && v.Height == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// Prober extracts duration and stream metadata from media files.
type Prober struct {
	ffmpegPath  string
	ffprobePath string
}

// NewProber creates a prober. ffprobe is resolved as a sibling of the ffmpeg
// binary when ffmpeg is given as a path, otherwise looked up on PATH.
func NewProber(ffmpegPath string) *Prober {
	return &Prober{
		ffmpegPath:  ffmpegPath,
		ffprobePath: findFFprobe(ffmpegPath),
	}
}

// findFFprobe derives the ffprobe location from the ffmpeg path.
func findFFprobe(ffmpegPath string) string {
	dir := filepath.Dir(ffmpegPath)
	if dir == "." {
		return "ffprobe"
	}
	return filepath.Join(dir, "ffprobe")
}

// FFprobePath returns the resolved ffprobe binary path.
func (p *Prober) FFprobePath() string {
	return p.ffprobePath
}

// Duration extracts the media duration in seconds by scraping the banner
// that `ffmpeg -i` prints to stderr. FFmpeg exits non-zero when no output
// is specified; that exit status is expected and ignored, only the absence
// of a Duration line is an error.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-i", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	secs, ok := parser.ExtractDuration(stderr.String())
	if !ok {
		return 0, &ProbeError{Path: path, Message: "could not determine duration"}
	}
	return secs, nil
}

// ffprobeOutput mirrors the JSON emitted by ffprobe -of json.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	RFrameRate    string `json:"r_frame_rate"`
	BitRate       string `json:"bit_rate"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
}

// StreamInfo probes the first video stream with ffprobe. The container size
// is read from the filesystem regardless of whether ffprobe succeeds, so a
// caller degrading to a placeholder record still gets the true size.
func (p *Prober) StreamInfo(ctx context.Context, path string) (VideoInfo, error) {
	info := VideoInfo{Size: fileSize(path)}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,bit_rate,codec_name,codec_long_name",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return info, &ProbeError{Path: path, Message: fmt.Sprintf("ffprobe failed: %v", err)}
	}

	parsed, err := ParseStreamInfo(out)
	if err != nil {
		return info, &ProbeError{Path: path, Message: err.Error()}
	}
	parsed.Size = info.Size
	return parsed, nil
}

// ParseStreamInfo decodes ffprobe JSON into a VideoInfo. Exported for
// testing against captured ffprobe output.
func ParseStreamInfo(data []byte) (VideoInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return VideoInfo{}, fmt.Errorf("invalid ffprobe JSON: %w", err)
	}
	if len(out.Streams) == 0 {
		return VideoInfo{}, fmt.Errorf("no video stream found")
	}

	s := out.Streams[0]
	return VideoInfo{
		Width:         s.Width,
		Height:        s.Height,
		FPS:           parseFrameRate(s.RFrameRate),
		BitrateKbps:   parseBitrateKbps(s.BitRate),
		Codec:         s.CodecName,
		CodecLongName: s.CodecLongName,
	}, nil
}

// parseFrameRate evaluates the "N/D" rational ffprobe reports, e.g.
// "30000/1001" -> 29.97. Returns 0 on malformed or zero-denominator input.
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// parseBitrateKbps converts ffprobe's bit_rate string (bits per second)
// to kbps. Missing or "N/A" values come back as 0.
func parseBitrateKbps(rate string) int64 {
	bps, err := strconv.ParseInt(rate, 10, 64)
	if err != nil {
		return 0
	}
	return bps / 1000
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
