package graph

import (
	"math"
	"time"

	"github.com/kpumuk/lazyscope/internal/mathutil"
	"github.com/kpumuk/lazyscope/internal/series"
)

// Scale is a linear mapping from a data domain onto a pixel range.
// It is a value type: composing or rebuilding always yields a new Scale.
type Scale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewScale builds a linear scale mapping [d0,d1] onto [r0,r1].
func NewScale(d0, d1, r0, r1 float64) Scale {
	return Scale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Apply maps a domain value to a pixel. A zero-width domain maps every
// value to the range start.
func (s Scale) Apply(v float64) float64 {
	if s.Degenerate() {
		return s.r0
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// Invert maps a pixel back to a domain value. A zero-width range maps
// every pixel to the domain start.
func (s Scale) Invert(px float64) float64 {
	if s.r1 == s.r0 {
		return s.d0
	}
	return s.d0 + (px-s.r0)/(s.r1-s.r0)*(s.d1-s.d0)
}

// InvertTime maps a pixel on a time axis back to a wall clock time.
func (s Scale) InvertTime(px float64) time.Time {
	return series.MillisToTime(s.Invert(px))
}

// Domain returns the data extent.
func (s Scale) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

// Range returns the pixel extent.
func (s Scale) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

// Degenerate reports whether the domain has zero or non-finite width.
func (s Scale) Degenerate() bool {
	return s.d0 == s.d1 || !mathutil.Finite(s.d0, s.d1)
}

// Ticks returns roughly n evenly spaced round values inside the domain.
func (s Scale) Ticks(n int) []float64 {
	lo, hi := min(s.d0, s.d1), max(s.d0, s.d1)
	if n <= 0 || lo == hi || !mathutil.Finite(lo, hi) {
		return nil
	}
	step := tickStep(lo, hi, n)
	if step <= 0 || !mathutil.Finite(step) {
		return nil
	}
	start := math.Ceil(lo / step)
	stop := math.Floor(hi / step)
	ticks := make([]float64, 0, int(stop-start)+1)
	for i := start; i <= stop; i++ {
		ticks = append(ticks, mathutil.RoundTo(i*step, 12))
	}
	return ticks
}

// tickStep picks a 1, 2 or 5 multiple of a power of ten.
func tickStep(lo, hi float64, n int) float64 {
	raw := (hi - lo) / float64(n)
	power := math.Floor(math.Log10(raw))
	errRatio := raw / math.Pow(10, power)
	factor := 1.0
	switch {
	case errRatio >= math.Sqrt(50):
		factor = 10
	case errRatio >= math.Sqrt(10):
		factor = 5
	case errRatio >= math.Sqrt(2):
		factor = 2
	}
	return factor * math.Pow(10, power)
}

var timeTickIntervals = []time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// TimeTicks returns roughly n tick positions (Unix ms) on clock-friendly
// boundaries, along with the interval chosen.
func (s Scale) TimeTicks(n int) ([]float64, time.Duration) {
	lo, hi := min(s.d0, s.d1), max(s.d0, s.d1)
	if n <= 0 || lo == hi || !mathutil.Finite(lo, hi) {
		return nil, 0
	}
	target := (hi - lo) / float64(n)
	interval := timeTickIntervals[len(timeTickIntervals)-1]
	for _, candidate := range timeTickIntervals {
		if float64(candidate.Milliseconds()) >= target {
			interval = candidate
			break
		}
	}
	step := float64(interval.Milliseconds())
	if target > step {
		// Longer than a day: fall back to whole-day multiples.
		step = math.Ceil(target/step) * step
		interval = time.Duration(step) * time.Millisecond
	}
	ticks := make([]float64, 0, n+1)
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		ticks = append(ticks, v)
	}
	return ticks, interval
}

// Scales pairs the time and value scales.
type Scales struct {
	X Scale
	Y Scale
}

// Invert maps a pixel position back to (time ms, value).
func (s Scales) Invert(px, py float64) (float64, float64) {
	return s.X.Invert(px), s.Y.Invert(py)
}

// BuildScales maps d onto the inner plot area of vp. X runs left to right,
// Y runs bottom to top. Nothing carries over from a previous viewport.
func BuildScales(d Domain, vp Viewport) Scales {
	w := float64(vp.InnerWidth())
	h := float64(vp.InnerHeight())
	return Scales{
		X: NewScale(d.X[0], d.X[1], 0, w),
		Y: NewScale(d.Y[0], d.Y[1], h, 0),
	}
}
