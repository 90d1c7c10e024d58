package graph

import (
	"math"
	"testing"
)

func testBase() Scales {
	return BuildScales(
		Domain{X: [2]float64{1000, 11000}, Y: [2]float64{-50, 50}},
		Viewport{Width: 200, Height: 100},
	)
}

func TestTransformApplyComposes(t *testing.T) {
	t.Parallel()

	base := testBase()
	tr := Transform{Translate: -30, Scale: 2.5}
	live := tr.Apply(base.X)

	for _, v := range []float64{1000, 2500, 6000, 11000, 20000} {
		want := base.X.Apply(v)*tr.Scale + tr.Translate
		if got := live.Apply(v); math.Abs(got-want) > 1e-9 {
			t.Fatalf("live(%v) = %v, want %v", v, got, want)
		}
	}
	if live.Range() != base.X.Range() {
		t.Fatalf("composition changed the pixel range: %v", live.Range())
	}
}

func TestZoomAnchorInvariance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		start  Transform
		p      float64
		factor float64
	}{
		{name: "zoom in from identity", start: Identity, p: 50, factor: 2},
		{name: "zoom out", start: Transform{Translate: -100, Scale: 4}, p: 120, factor: 0.5},
		{name: "anchor at edge", start: Transform{Translate: 10, Scale: 1.5}, p: 0, factor: 3},
		{name: "clamped at max", start: Transform{Translate: 0, Scale: 30}, p: 77, factor: 10},
		{name: "clamped at min", start: Transform{Translate: 5, Scale: 0.6}, p: 33, factor: 0.1},
	}

	base := testBase()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			before := tt.start.Apply(base.X)
			anchor := before.Invert(tt.p)

			next := tt.start.ZoomAt(tt.p, tt.factor, DefaultMinScale, DefaultMaxScale)
			after := next.Apply(base.X)

			if got := after.Apply(anchor); math.Abs(got-tt.p) > 1e-6 {
				t.Fatalf("point under %v moved to %v", tt.p, got)
			}
			if next.Scale < DefaultMinScale || next.Scale > DefaultMaxScale {
				t.Fatalf("scale %v escaped the extent", next.Scale)
			}
		})
	}
}

func TestZoomAnchorInvarianceOnValueAxis(t *testing.T) {
	t.Parallel()

	base := testBase()
	z := NewZoom()
	py := 20.0
	anchor := z.Live(base).Y.Invert(py)

	z.ZoomAt(0, py, 4)
	if got := z.Live(base).Y.Apply(anchor); math.Abs(got-py) > 1e-9 {
		t.Fatalf("value under y=%v moved to %v", py, got)
	}
}

func TestPanChangesTranslateOnly(t *testing.T) {
	t.Parallel()

	z := NewZoom()
	z.SetZoom(Transform{Translate: 3, Scale: 2}, Transform{Translate: -4, Scale: 8})

	z.Pan(12.5, -7)

	if got := z.X(); got.Translate != 15.5 || got.Scale != 2 {
		t.Fatalf("X after pan = %+v, want {15.5 2}", got)
	}
	if got := z.Y(); got.Translate != -11 || got.Scale != 8 {
		t.Fatalf("Y after pan = %+v, want {-11 8}", got)
	}
}

func TestZoomModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode         Mode
		xMoved, yMov bool
	}{
		{mode: ZoomBoth, xMoved: true, yMov: true},
		{mode: ZoomX, xMoved: true, yMov: false},
		{mode: ZoomY, xMoved: false, yMov: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			t.Parallel()
			z := NewZoom()
			z.SetMode(tt.mode)
			z.ZoomAt(10, 10, 2)
			z.Pan(5, 5)
			if got := !z.X().IsIdentity(); got != tt.xMoved {
				t.Fatalf("x changed = %v, want %v", got, tt.xMoved)
			}
			if got := !z.Y().IsIdentity(); got != tt.yMov {
				t.Fatalf("y changed = %v, want %v", got, tt.yMov)
			}
		})
	}
}

func TestZoomCycleModeAndReset(t *testing.T) {
	t.Parallel()

	z := NewZoom()
	want := []Mode{ZoomX, ZoomY, ZoomBoth, ZoomX}
	for i, w := range want {
		if got := z.CycleMode(); got != w {
			t.Fatalf("cycle %d = %v, want %v", i, got, w)
		}
	}

	z.ZoomAt(1, 1, 3)
	if !z.Zoomed() {
		t.Fatalf("Zoomed() = false after ZoomAt")
	}
	z.Reset()
	if z.Zoomed() || z.Mode() != ZoomX {
		t.Fatalf("after Reset: zoomed=%v mode=%v", z.Zoomed(), z.Mode())
	}
}

func TestZoomExtentFromOptions(t *testing.T) {
	t.Parallel()

	z := NewZoom(WithScaleExtent(1, 4))
	for range 10 {
		z.ZoomAt(0, 0, 2)
	}
	if z.X().Scale != 4 || z.Y().Scale != 4 {
		t.Fatalf("scale = %v/%v, want clamped to 4", z.X().Scale, z.Y().Scale)
	}
	for range 10 {
		z.ZoomAt(0, 0, 0.5)
	}
	if z.X().Scale != 1 {
		t.Fatalf("scale = %v, want clamped to 1", z.X().Scale)
	}

	z.SetZoom(Transform{Scale: 100}, Transform{Scale: -1})
	if z.X().Scale != 4 || !z.Y().IsIdentity() {
		t.Fatalf("SetZoom clamping: x=%+v y=%+v", z.X(), z.Y())
	}
}

func TestZoomDegenerateBaseIsIdentity(t *testing.T) {
	t.Parallel()

	base := BuildScales(Domain{X: [2]float64{500, 500}, Y: [2]float64{1, 1}}, Viewport{Width: 100, Height: 100})
	z := NewZoom()
	z.ZoomAt(50, 50, 8)
	z.Pan(20, 20)

	live := z.Live(base)
	if live != base {
		t.Fatalf("Live(degenerate) = %+v, want base %+v", live, base)
	}
	if math.IsNaN(live.X.Invert(10)) || math.IsNaN(live.Y.Apply(1)) {
		t.Fatalf("degenerate composition produced NaN")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ZoomBoth, ZoomX, ZoomY} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("z"); ok {
		t.Fatalf("ParseMode(z) should fail")
	}
}
