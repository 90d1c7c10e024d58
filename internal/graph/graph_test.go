package graph

import (
	"testing"
	"time"

	"github.com/kpumuk/lazyscope/internal/series"
)

func TestGraphMemoizesStages(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("a", series.Sample{Timestamp: 0, Value: 1}, series.Sample{Timestamp: 1000, Value: 3})

	g := New(NewResolver(WithAnchor(time.Unix(0, 0))), nil)
	g.SetViewport(Viewport{Width: 200, Height: 100})
	g.SetSnapshot(store.Snapshot())

	first := g.Pass()
	second := g.Pass()
	if first.Live != second.Live || first.Domain != second.Domain {
		t.Fatalf("identical inputs produced different frames")
	}
	if got := g.Runs(); got != (Runs{Domain: 1, Base: 1, Live: 1}) {
		t.Fatalf("Runs after two passes = %+v", got)
	}

	// New samples inside the current bounds change the version only.
	store.Append("a", series.Sample{Timestamp: 500, Value: 2})
	g.SetSnapshot(store.Snapshot())
	third := g.Pass()
	if third.Snapshot.Version == first.Snapshot.Version {
		t.Fatalf("snapshot version did not advance")
	}
	if got := g.Runs(); got != (Runs{Domain: 1, Base: 1, Live: 1}) {
		t.Fatalf("Runs after in-bounds append = %+v", got)
	}

	g.Zoom().Pan(10, 0)
	g.Pass()
	if got := g.Runs(); got != (Runs{Domain: 1, Base: 1, Live: 2}) {
		t.Fatalf("Runs after pan = %+v", got)
	}

	g.SetViewport(Viewport{Width: 300, Height: 100})
	g.Pass()
	if got := g.Runs(); got != (Runs{Domain: 1, Base: 2, Live: 3}) {
		t.Fatalf("Runs after resize = %+v", got)
	}

	store.Append("b", series.Sample{Timestamp: 2000, Value: 10})
	g.SetSnapshot(store.Snapshot())
	g.Pass()
	if got := g.Runs(); got != (Runs{Domain: 2, Base: 3, Live: 4}) {
		t.Fatalf("Runs after bounds change = %+v", got)
	}
}

func TestGraphPassIsConsistent(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("a", series.Sample{Timestamp: 10, Value: -5}, series.Sample{Timestamp: 20, Value: 5})

	g := New(nil, nil)
	g.SetViewport(Viewport{Width: 100, Height: 100})
	g.SetSnapshot(store.Snapshot())

	frame := g.Pass()
	store.Append("a", series.Sample{Timestamp: 1e6, Value: 1e6})

	want := NewResolver().Resolve(frame.Snapshot.Bounds)
	if frame.Domain.Y != want.Y || frame.Domain.X != want.X {
		t.Fatalf("frame domain %+v disagrees with its own snapshot bounds (%+v)", frame.Domain, want)
	}
	if frame.Base != BuildScales(frame.Domain, frame.Viewport) {
		t.Fatalf("frame base scales disagree with frame domain")
	}
}

func TestGraphSetSourceResetsZoom(t *testing.T) {
	t.Parallel()

	g := New(nil, nil)
	g.Zoom().ZoomAt(5, 5, 4)
	g.Pass()

	g.SetSource(series.EmptySnapshot())
	frame := g.Pass()
	if !frame.ZoomX.IsIdentity() || !frame.ZoomY.IsIdentity() {
		t.Fatalf("zoom survived SetSource: %+v %+v", frame.ZoomX, frame.ZoomY)
	}
	if frame.Live != frame.Base {
		t.Fatalf("live scales differ from base at identity")
	}

	g.Zoom().Pan(3, 3)
	g.ResetZoom()
	if g.Zoom().Zoomed() {
		t.Fatalf("ResetZoom left a transform behind")
	}
}
