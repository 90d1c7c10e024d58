// Package graph turns running bounds into axis domains, pixel scales and
// zoomed live scales, and memoizes each stage so a recomputation pass only
// redoes the work whose inputs changed.
package graph

import (
	"time"

	"github.com/kpumuk/lazyscope/internal/series"
)

// Domain is the renderable axis range. X is in Unix milliseconds.
type Domain struct {
	X [2]float64 `json:"xDomain"`
	Y [2]float64 `json:"yDomain"`
}

const (
	// DefaultPadding is the fraction of the data range added to each end.
	DefaultPadding = 0.1
	// DefaultTimeSpan is the time window shown before any data arrives.
	DefaultTimeSpan = 24 * time.Hour
)

// DefaultValueDomain is the value window shown before any data arrives.
var DefaultValueDomain = [2]float64{0, 100}

// Resolver converts bounds into a padded domain.
type Resolver struct {
	padding   float64
	timeSpan  time.Duration
	valueSpan [2]float64
	anchor    time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPadding sets the fraction of the data range added to each end.
// Negative values are treated as zero.
func WithPadding(p float64) Option {
	return func(r *Resolver) { r.padding = max(p, 0) }
}

// WithDefaultTimeSpan sets the time window used when there is no data.
func WithDefaultTimeSpan(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeSpan = d
		}
	}
}

// WithDefaultValueDomain sets the value window used when there is no data.
func WithDefaultValueDomain(lo, hi float64) Option {
	return func(r *Resolver) {
		if hi > lo {
			r.valueSpan = [2]float64{lo, hi}
		}
	}
}

// WithAnchor fixes the "now" the default time window ends at.
func WithAnchor(t time.Time) Option {
	return func(r *Resolver) { r.anchor = t }
}

// NewResolver creates a resolver. The default time window ends at the
// moment the resolver is created unless WithAnchor overrides it, so
// Resolve stays a pure function of its input.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		padding:   DefaultPadding,
		timeSpan:  DefaultTimeSpan,
		valueSpan: DefaultValueDomain,
		anchor:    time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default returns the domain used when there is no data.
func (r *Resolver) Default() Domain {
	end := float64(r.anchor.UnixMilli())
	return Domain{
		X: [2]float64{end - float64(r.timeSpan.Milliseconds()), end},
		Y: r.valueSpan,
	}
}

// Resolve returns the padded domain for b. Sentinel bounds yield Default.
// An axis with zero range gets the default span centred on its value.
func (r *Resolver) Resolve(b series.Bounds) Domain {
	if b.Empty() {
		return r.Default()
	}
	return Domain{
		X: r.axis(b.MinTimestamp, b.MaxTimestamp, float64(r.timeSpan.Milliseconds())),
		Y: r.axis(b.MinValue, b.MaxValue, r.valueSpan[1]-r.valueSpan[0]),
	}
}

func (r *Resolver) axis(lo, hi, fallbackSpan float64) [2]float64 {
	span := hi - lo
	if span == 0 {
		half := fallbackSpan / 2
		return [2]float64{lo - half, lo + half}
	}
	pad := span * r.padding
	return [2]float64{lo - pad, hi + pad}
}

// Width returns the X extent in milliseconds.
func (d Domain) Width() float64 { return d.X[1] - d.X[0] }

// Height returns the Y extent.
func (d Domain) Height() float64 { return d.Y[1] - d.Y[0] }
