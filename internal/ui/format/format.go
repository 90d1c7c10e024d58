// Package format provides UI formatting helpers.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kpumuk/lazyscope/internal/series"
)

// Duration formats elapsed seconds as "2m3s", "1h30m", etc. (max 2 segments).
func Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm%ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Span formats a millisecond time span: "250ms", "4.5s", "2m3s".
func Span(ms float64) string {
	switch {
	case math.IsNaN(ms) || ms <= 0:
		return "0ms"
	case ms < 1000:
		return strconv.FormatFloat(math.Round(ms*10)/10, 'f', -1, 64) + "ms"
	case ms < 60_000:
		return strconv.FormatFloat(math.Round(ms/100)/10, 'f', -1, 64) + "s"
	default:
		return Duration(int64(ms / 1000))
	}
}

// ShortNumber formats a number into a compact 4-char max string (e.g., 999, 9.9K, 120K).
func ShortNumber(n int64) string {
	switch {
	case n < 1_000:
		return strconv.FormatInt(n, 10)
	case n < 10_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	case n < 1_000_000:
		return fmt.Sprintf("%dK", n/1_000)
	case n < 10_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n < 1_000_000_000:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n < 10_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	default:
		return fmt.Sprintf("%dB", n/1_000_000_000)
	}
}

// Value formats a measurement compactly: at most four significant digits
// and scientific notation for very large or very small magnitudes.
func Value(v float64) string {
	abs := math.Abs(v)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 0):
		if v > 0 {
			return "+Inf"
		}
		return "-Inf"
	case abs == 0:
		return "0"
	case abs >= 1e5 || abs < 1e-3:
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	s := strconv.FormatFloat(v, 'f', max(0, 3-int(math.Floor(math.Log10(abs)))), 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// AxisTime formats an x-axis tick at ms. Absolute labels show the wall
// clock in loc; relative labels show the offset from origin. Steps below
// one second add milliseconds.
func AxisTime(ms, origin float64, relative bool, step time.Duration, loc *time.Location) string {
	fine := step > 0 && step < time.Second
	if !relative {
		if loc == nil {
			loc = time.Local
		}
		t := series.MillisToTime(ms).In(loc)
		if fine {
			return t.Format("04:05.000")
		}
		return t.Format("15:04:05")
	}

	d := ms - origin
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	if fine {
		mins := int64(d / 60_000)
		secs := (d - float64(mins)*60_000) / 1000
		return fmt.Sprintf("%s%02d:%06.3f", sign, mins, secs)
	}
	whole := int64(math.Round(d / 1000))
	return fmt.Sprintf("%s%02d:%02d", sign, whole/60, whole%60)
}
