package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatTimestamp formats seconds as HH:MM:SS.mmm, the chapter wire format.
// Milliseconds are rounded; negative input clamps to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	mins := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, mins, secs, millis)
}

// ParseTimestamp parses HH:MM:SS(.mmm), MM:SS(.mmm) or raw seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("expected HH:MM:SS.mmm, MM:SS or seconds, got '%s'", s)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid seconds in '%s': %w", s, err)
			}
			v = f
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("invalid field in '%s': %w", s, err)
			}
			v = float64(n)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("invalid timestamp '%s'", s)
		}
		if !last && i > 0 && v >= 60 {
			return 0, fmt.Errorf("minutes out of range in '%s'", s)
		}
		if last && len(parts) > 1 && v >= 60 {
			return 0, fmt.Errorf("seconds out of range in '%s'", s)
		}
		total = total*60 + v
	}
	return total, nil
}
