// Package series holds channel samples, the running bounds across them and
// the versioned store data sources write into.
package series

import (
	"math"
	"time"

	"github.com/kpumuk/lazyscope/internal/mathutil"
)

// Sample is a single measurement of one channel.
type Sample struct {
	Timestamp float64 `json:"timestamp"` // Unix milliseconds
	Value     float64 `json:"value"`
}

// At builds a sample from a wall clock time.
func At(t time.Time, value float64) Sample {
	return Sample{Timestamp: float64(t.UnixNano()) / float64(time.Millisecond), Value: value}
}

// Time returns the sample timestamp as a UTC time.
func (s Sample) Time() time.Time {
	return MillisToTime(s.Timestamp)
}

// Valid reports whether both fields are finite.
func (s Sample) Valid() bool {
	return mathutil.Finite(s.Timestamp, s.Value)
}

// MillisToTime converts fractional Unix milliseconds to a UTC time.
func MillisToTime(ms float64) time.Time {
	if !mathutil.Finite(ms) {
		return time.Time{}
	}
	sec, frac := math.Modf(ms / 1000)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}
