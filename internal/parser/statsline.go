package parser

import (
	"strconv"
	"strings"
)

// StatsLine holds the fields parsed from an FFmpeg encode progress line.
//
// FFmpeg writes these to stderr while encoding:
//
//	frame=  120 fps= 25 q=29.0 size=    1024KiB time=00:00:05.00 bitrate=1677.7kbits/s speed=1.05x
//
// Fields FFmpeg reports as "N/A" (or omits) are left at their zero value.
type StatsLine struct {
	// Frame count (cumulative)
	Frame int64

	// Encoding rate in frames per second
	FPS float64

	// Position in the output timeline, seconds
	TimeSeconds float64

	// Encoding speed relative to realtime (1.0 = realtime)
	Speed float64
}

// IsProgressLine reports whether an FFmpeg stderr line is an encode progress
// line. The "time=" marker is the discriminator the progress display keys on.
func IsProgressLine(line string) bool {
	return strings.Contains(line, "time=")
}

// ParseStatsLine extracts progress fields from an FFmpeg stats line.
// Returns false if the line carries no time= marker.
func ParseStatsLine(line string) (StatsLine, bool) {
	if !IsProgressLine(line) {
		return StatsLine{}, false
	}

	var sl StatsLine
	for _, key := range []string{"frame", "fps", "time", "speed"} {
		value, ok := fieldValue(line, key+"=")
		if !ok {
			continue
		}
		switch key {
		case "frame":
			sl.Frame, _ = strconv.ParseInt(value, 10, 64)
		case "fps":
			sl.FPS, _ = strconv.ParseFloat(value, 64)
		case "time":
			if secs, err := ParseTimestamp(value); err == nil {
				sl.TimeSeconds = secs
			}
		case "speed":
			sl.Speed = parseSpeed(value)
		}
	}
	return sl, true
}

// fieldValue finds "key=" in line and returns the whitespace-delimited value
// following it. FFmpeg pads values with spaces after the '=' ("fps= 25").
func fieldValue(line, key string) (string, bool) {
	idx := strings.Index(line, key)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimLeft(line[idx+len(key):], " ")
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return "", false
	}
	return rest[:end], true
}

// parseSpeed converts FFmpeg speed strings to float64.
//
// Examples:
//   - "1.05x" -> 1.05
//   - "N/A"   -> 0.0
//   - ""      -> 0.0
func parseSpeed(s string) float64 {
	s = strings.TrimSuffix(s, "x")
	if s == "N/A" || s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
