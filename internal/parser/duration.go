// Package parser provides parsing for FFmpeg output streams.
//
// This file extracts the media duration from FFmpeg's banner output. When
// invoked with an input and no output file, FFmpeg prints stream metadata to
// stderr, including a line of the form:
//
//	Duration: 00:02:37.04, start: 0.000000, bitrate: 4853 kb/s
//
// The timestamp is always HH:MM:SS followed by a fractional second part.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// durationRe matches the timestamp in FFmpeg's "Duration:" banner line.
var durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2}\.\d+)`)

// ExtractDuration searches FFmpeg diagnostic output for a duration timestamp
// and returns it in seconds. The second return value reports whether a
// matching timestamp was found.
func ExtractDuration(output string) (float64, bool) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.ParseFloat(m[3], 64)

	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// ParseTimestamp converts an FFmpeg timestamp string ("00:00:01.04") to
// seconds. Returns an error if the string is not colon-separated H:M:S.
func ParseTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
