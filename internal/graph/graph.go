package graph

import (
	"github.com/kpumuk/lazyscope/internal/series"
)

// memo caches the last value computed for a comparable key.
type memo[K comparable, V any] struct {
	key   K
	value V
	valid bool
	runs  int
}

func (m *memo[K, V]) get(key K, compute func() V) V {
	if m.valid && m.key == key {
		return m.value
	}
	m.key, m.value, m.valid = key, compute(), true
	m.runs++
	return m.value
}

func (m *memo[K, V]) reset() {
	var zero V
	m.value, m.valid = zero, false
}

type baseKey struct {
	domain   Domain
	viewport Viewport
}

type liveKey struct {
	base   Scales
	tx, ty Transform
}

// Frame is one consistent recomputation pass. Every field is derived from
// the same snapshot.
type Frame struct {
	Snapshot series.Snapshot
	Domain   Domain
	Base     Scales
	Live     Scales
	Viewport Viewport
	ZoomX    Transform
	ZoomY    Transform
}

// Runs counts how often each stage actually recomputed.
type Runs struct {
	Domain int
	Base   int
	Live   int
}

// Graph owns the inputs of the scale pipeline and recomputes each stage
// only when the stage's own inputs changed. It is not safe for concurrent
// use; the UI loop owns it.
type Graph struct {
	resolver *Resolver
	zoom     *Zoom
	snapshot series.Snapshot
	viewport Viewport

	domain memo[series.Bounds, Domain]
	base   memo[baseKey, Scales]
	live   memo[liveKey, Scales]
}

// New creates a graph with an empty snapshot.
func New(resolver *Resolver, zoom *Zoom) *Graph {
	if resolver == nil {
		resolver = NewResolver()
	}
	if zoom == nil {
		zoom = NewZoom()
	}
	return &Graph{
		resolver: resolver,
		zoom:     zoom,
		snapshot: series.EmptySnapshot(),
		viewport: Viewport{Margin: DefaultMargin},
	}
}

// Zoom exposes the navigation state for gestures.
func (g *Graph) Zoom() *Zoom { return g.zoom }

// Snapshot returns the snapshot the next pass will read.
func (g *Graph) Snapshot() series.Snapshot { return g.snapshot }

// Viewport returns the current viewport.
func (g *Graph) Viewport() Viewport { return g.viewport }

// SetSnapshot replaces the data the next pass reads.
func (g *Graph) SetSnapshot(s series.Snapshot) { g.snapshot = s }

// SetViewport replaces the plot size.
func (g *Graph) SetViewport(vp Viewport) { g.viewport = vp }

// ResetZoom returns both axes to identity.
func (g *Graph) ResetZoom() { g.zoom.Reset() }

// SetSource discards everything derived from the previous source: the
// snapshot, memoized stages and the zoom.
func (g *Graph) SetSource(s series.Snapshot) {
	g.snapshot = s
	g.zoom.Reset()
	g.domain.reset()
	g.base.reset()
	g.live.reset()
}

// Pass recomputes whatever is stale and returns a consistent frame.
func (g *Graph) Pass() Frame {
	snap := g.snapshot
	vp := g.viewport
	tx, ty := g.zoom.X(), g.zoom.Y()

	domain := g.domain.get(snap.Bounds, func() Domain {
		return g.resolver.Resolve(snap.Bounds)
	})
	base := g.base.get(baseKey{domain: domain, viewport: vp}, func() Scales {
		return BuildScales(domain, vp)
	})
	live := g.live.get(liveKey{base: base, tx: tx, ty: ty}, func() Scales {
		return Live(base, tx, ty)
	})

	return Frame{
		Snapshot: snap,
		Domain:   domain,
		Base:     base,
		Live:     live,
		Viewport: vp,
		ZoomX:    tx,
		ZoomY:    ty,
	}
}

// Runs reports how many times each stage recomputed.
func (g *Graph) Runs() Runs {
	return Runs{Domain: g.domain.runs, Base: g.base.runs, Live: g.live.runs}
}
