// Package selection tracks the drag-to-select gesture on the plot and
// computes statistics for the samples inside the selected time range.
package selection

import "math"

// DefaultThreshold is the drag distance in pixels that turns a press into
// a selection.
const DefaultThreshold = 5.0

// State is the gesture state.
type State int

const (
	Idle State = iota
	PotentialSelection
	Selecting
)

func (s State) String() string {
	switch s {
	case PotentialSelection:
		return "potential"
	case Selecting:
		return "selecting"
	default:
		return "idle"
	}
}

// Rect is a selection in inner plot pixels. The full plot height is
// implied.
type Rect struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Left returns the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Selector is the drag-to-select state machine. A nil Rect means there is
// no selection.
type Selector struct {
	enabled   bool
	threshold float64
	state     State
	anchorX   float64
	anchorY   float64
	rect      *Rect
	onChange  func(*Rect)
}

// Option configures a Selector.
type Option func(*Selector)

// WithThreshold sets the drag distance in pixels.
func WithThreshold(px float64) Option {
	return func(s *Selector) {
		if px >= 0 {
			s.threshold = px
		}
	}
}

// WithOnChange registers a callback run whenever the rectangle changes.
func WithOnChange(fn func(*Rect)) Option {
	return func(s *Selector) { s.onChange = fn }
}

// New creates a disabled selector.
func New(opts ...Option) *Selector {
	s := &Selector{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether selection mode is on.
func (s *Selector) Enabled() bool { return s.enabled }

// SetEnabled switches selection mode. Any selection is cleared.
func (s *Selector) SetEnabled(on bool) {
	s.enabled = on
	s.state = Idle
	s.setRect(nil)
}

// Toggle flips selection mode and returns the new value.
func (s *Selector) Toggle() bool {
	s.SetEnabled(!s.enabled)
	return s.enabled
}

// State returns the gesture state.
func (s *Selector) State() State { return s.state }

// Rect returns the current selection, or nil.
func (s *Selector) Rect() *Rect {
	if s.rect == nil {
		return nil
	}
	r := *s.rect
	return &r
}

// Start handles pointer-down. It reports whether the selector took the
// gesture; when selection mode is off it does nothing.
func (s *Selector) Start(x, y float64) bool {
	if !s.enabled {
		return false
	}
	s.state = PotentialSelection
	s.anchorX, s.anchorY = x, y
	return true
}

// Move handles pointer movement during a gesture.
func (s *Selector) Move(x, y float64) {
	switch s.state {
	case PotentialSelection:
		if math.Hypot(x-s.anchorX, y-s.anchorY) < s.threshold {
			return
		}
		s.state = Selecting
		fallthrough
	case Selecting:
		left, right := min(s.anchorX, x), max(s.anchorX, x)
		s.setRect(&Rect{X: left, Width: right - left})
	}
}

// Finish handles pointer-up and reports whether the gesture was a drag. A
// press released before crossing the threshold clears the selection.
func (s *Selector) Finish() bool {
	switch s.state {
	case Selecting:
		s.state = Idle
		return true
	case PotentialSelection:
		s.state = Idle
		s.setRect(nil)
	}
	return false
}

// Clear removes the selection and abandons any gesture.
func (s *Selector) Clear() {
	s.state = Idle
	s.setRect(nil)
}

func (s *Selector) setRect(r *Rect) {
	if s.rect == nil && r == nil {
		return
	}
	s.rect = r
	if s.onChange != nil {
		s.onChange(s.Rect())
	}
}
