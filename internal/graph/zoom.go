package graph

import (
	"github.com/kpumuk/lazyscope/internal/mathutil"
)

// Transform is a translate and scale pair applied to one axis in pixel
// space: x ↦ S(x)*Scale + Translate.
type Transform struct {
	Translate float64 `json:"translate"`
	Scale     float64 `json:"scale"`
}

// Identity leaves a scale unchanged.
var Identity = Transform{Translate: 0, Scale: 1}

// IsIdentity reports whether t is the identity transform.
func (t Transform) IsIdentity() bool { return t == Identity }

// Apply composes t onto s. The result keeps the pixel range of s and has
// a rescaled domain, so Apply(s).Apply(v) == s.Apply(v)*Scale + Translate.
// A degenerate base domain or an invalid factor yields s unchanged.
func (t Transform) Apply(s Scale) Scale {
	if s.Degenerate() || t.Scale <= 0 || !mathutil.Finite(t.Scale, t.Translate) {
		return s
	}
	if t.IsIdentity() {
		return s
	}
	return Scale{
		d0: s.Invert((s.r0 - t.Translate) / t.Scale),
		d1: s.Invert((s.r1 - t.Translate) / t.Scale),
		r0: s.r0,
		r1: s.r1,
	}
}

// ZoomAt multiplies the scale by ratio, clamped to [lo, hi], and adjusts
// the translate so the data value under pixel p stays under p.
func (t Transform) ZoomAt(p, ratio, lo, hi float64) Transform {
	if ratio <= 0 || !mathutil.Finite(ratio, p) || t.Scale <= 0 {
		return t
	}
	k := mathutil.Clamp(t.Scale*ratio, lo, hi)
	return Transform{
		Translate: p - (p-t.Translate)*k/t.Scale,
		Scale:     k,
	}
}

// Pan shifts the translate by d pixels. The scale is untouched.
func (t Transform) Pan(d float64) Transform {
	if !mathutil.Finite(d) {
		return t
	}
	t.Translate += d
	return t
}

// Mode selects which axes a gesture affects.
type Mode int

const (
	ZoomBoth Mode = iota
	ZoomX
	ZoomY
)

func (m Mode) String() string {
	switch m {
	case ZoomX:
		return "x"
	case ZoomY:
		return "y"
	default:
		return "xy"
	}
}

// ParseMode parses the names produced by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "xy", "both", "":
		return ZoomBoth, true
	case "x":
		return ZoomX, true
	case "y":
		return ZoomY, true
	}
	return ZoomBoth, false
}

func (m Mode) affectsX() bool { return m != ZoomY }
func (m Mode) affectsY() bool { return m != ZoomX }

const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 32
)

// Zoom holds the user's navigation state for both axes. It never touches
// the domain: live scales are derived by composing the transforms onto
// whatever base scales the data currently produces.
type Zoom struct {
	x, y     Transform
	mode     Mode
	minScale float64
	maxScale float64
}

// ZoomOption configures a Zoom.
type ZoomOption func(*Zoom)

// WithScaleExtent bounds the composed scale factor.
func WithScaleExtent(lo, hi float64) ZoomOption {
	return func(z *Zoom) {
		if lo > 0 && hi >= lo {
			z.minScale, z.maxScale = lo, hi
		}
	}
}

// WithMode sets the initial zoom mode.
func WithMode(m Mode) ZoomOption {
	return func(z *Zoom) { z.mode = m }
}

// NewZoom creates an identity zoom.
func NewZoom(opts ...ZoomOption) *Zoom {
	z := &Zoom{
		x:        Identity,
		y:        Identity,
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// X returns the time axis transform.
func (z *Zoom) X() Transform { return z.x }

// Y returns the value axis transform.
func (z *Zoom) Y() Transform { return z.y }

// Mode returns the current mode.
func (z *Zoom) Mode() Mode { return z.mode }

// Extent returns the allowed scale range.
func (z *Zoom) Extent() (float64, float64) { return z.minScale, z.maxScale }

// SetZoom replaces both transforms. Scale factors are clamped to the extent.
func (z *Zoom) SetZoom(tx, ty Transform) {
	z.x = z.clamp(tx)
	z.y = z.clamp(ty)
}

func (z *Zoom) clamp(t Transform) Transform {
	if t.Scale <= 0 || !mathutil.Finite(t.Scale, t.Translate) {
		return Identity
	}
	t.Scale = mathutil.Clamp(t.Scale, z.minScale, z.maxScale)
	return t
}

// ZoomAt zooms by ratio around the pixel (px, py) on the axes the mode
// selects.
func (z *Zoom) ZoomAt(px, py, ratio float64) {
	if z.mode.affectsX() {
		z.x = z.x.ZoomAt(px, ratio, z.minScale, z.maxScale)
	}
	if z.mode.affectsY() {
		z.y = z.y.ZoomAt(py, ratio, z.minScale, z.maxScale)
	}
}

// Pan translates by (dx, dy) pixels on the axes the mode selects.
func (z *Zoom) Pan(dx, dy float64) {
	if z.mode.affectsX() {
		z.x = z.x.Pan(dx)
	}
	if z.mode.affectsY() {
		z.y = z.y.Pan(dy)
	}
}

// Reset returns both axes to identity. The mode is kept.
func (z *Zoom) Reset() {
	z.x, z.y = Identity, Identity
}

// SetMode changes which axes later gestures affect.
func (z *Zoom) SetMode(m Mode) { z.mode = m }

// CycleMode advances xy → x → y → xy and returns the new mode.
func (z *Zoom) CycleMode() Mode {
	z.mode = (z.mode + 1) % 3
	return z.mode
}

// Zoomed reports whether either axis is off identity.
func (z *Zoom) Zoomed() bool {
	return !z.x.IsIdentity() || !z.y.IsIdentity()
}

// Live composes the transforms onto base.
func (z *Zoom) Live(base Scales) Scales {
	return Live(base, z.x, z.y)
}

// Live composes tx and ty onto base. Axes with a degenerate domain are
// returned unchanged.
func Live(base Scales, tx, ty Transform) Scales {
	return Scales{X: tx.Apply(base.X), Y: ty.Apply(base.Y)}
}
