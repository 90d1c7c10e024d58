package series

import "math"

// Bounds tracks running extrema across every sample applied so far.
//
// A fresh tracker holds +Inf minima and -Inf maxima. That sentinel state is
// the only representation of "no data": check Empty before deriving a
// domain from it. The zero value is not the sentinel, use NewBounds.
type Bounds struct {
	MinTimestamp float64 `json:"minTimestamp"`
	MaxTimestamp float64 `json:"maxTimestamp"`
	MinValue     float64 `json:"minValue"`
	MaxValue     float64 `json:"maxValue"`
}

// NewBounds returns a tracker in the sentinel "no data" state.
func NewBounds() Bounds {
	return Bounds{
		MinTimestamp: math.Inf(1),
		MaxTimestamp: math.Inf(-1),
		MinValue:     math.Inf(1),
		MaxValue:     math.Inf(-1),
	}
}

// Apply folds one sample into the bounds. Samples with a non-finite field
// are skipped and Apply reports false.
func (b *Bounds) Apply(s Sample) bool {
	if !s.Valid() {
		return false
	}
	b.MinTimestamp = min(b.MinTimestamp, s.Timestamp)
	b.MaxTimestamp = max(b.MaxTimestamp, s.Timestamp)
	b.MinValue = min(b.MinValue, s.Value)
	b.MaxValue = max(b.MaxValue, s.Value)
	return true
}

// ApplyBatch folds every sample and returns how many were accepted.
func (b *Bounds) ApplyBatch(samples []Sample) int {
	accepted := 0
	for _, s := range samples {
		if b.Apply(s) {
			accepted++
		}
	}
	return accepted
}

// Reset returns the bounds to the sentinel state.
func (b *Bounds) Reset() {
	*b = NewBounds()
}

// Empty reports whether no finite sample has been applied yet.
func (b Bounds) Empty() bool {
	return b.MinTimestamp > b.MaxTimestamp || b.MinValue > b.MaxValue
}

// Contains reports whether the sample lies within the bounds.
func (b Bounds) Contains(s Sample) bool {
	if b.Empty() {
		return false
	}
	return s.Timestamp >= b.MinTimestamp && s.Timestamp <= b.MaxTimestamp &&
		s.Value >= b.MinValue && s.Value <= b.MaxValue
}

// TimeRange returns MaxTimestamp-MinTimestamp, or 0 when empty.
func (b Bounds) TimeRange() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxTimestamp - b.MinTimestamp
}

// ValueRange returns MaxValue-MinValue, or 0 when empty.
func (b Bounds) ValueRange() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxValue - b.MinValue
}

// Equal reports whether both trackers hold the same extrema.
func (b Bounds) Equal(other Bounds) bool {
	return b == other
}
