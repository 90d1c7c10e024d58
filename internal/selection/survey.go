package selection

// Point is a position in data space: Unix milliseconds and value.
type Point struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// Delta is the difference between the second and the first survey point.
type Delta struct {
	Dt float64 `json:"dtMs"`
	Dy float64 `json:"dy"`
}

// Survey measures the distance between two clicked points. Points are
// kept in data space so they stay put when the view zooms or pans.
type Survey struct {
	enabled bool
	first   *Point
	second  *Point
}

// Enabled reports whether survey mode is on.
func (s *Survey) Enabled() bool { return s.enabled }

// SetEnabled switches survey mode and forgets recorded points.
func (s *Survey) SetEnabled(on bool) {
	s.enabled = on
	s.Reset()
}

// Toggle flips survey mode and reports the new state.
func (s *Survey) Toggle() bool {
	s.SetEnabled(!s.enabled)
	return s.enabled
}

// Click records p. The first click sets the start point, every later one
// replaces the end point. With survey mode off it only clears.
func (s *Survey) Click(p Point) {
	if !s.enabled {
		s.Reset()
		return
	}
	if s.first == nil {
		s.first = &p
		return
	}
	s.second = &p
}

// Reset forgets recorded points.
func (s *Survey) Reset() {
	s.first, s.second = nil, nil
}

// Points returns the recorded points in click order.
func (s *Survey) Points() []Point {
	var out []Point
	if s.first != nil {
		out = append(out, *s.first)
	}
	if s.second != nil {
		out = append(out, *s.second)
	}
	return out
}

// Delta returns second minus first once both points are set.
func (s *Survey) Delta() (Delta, bool) {
	if s.first == nil || s.second == nil {
		return Delta{}, false
	}
	return Delta{Dt: s.second.T - s.first.T, Dy: s.second.V - s.first.V}, true
}
