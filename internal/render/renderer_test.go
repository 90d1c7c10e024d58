package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/series"
)

type fakeBackend struct {
	posted  []Request
	replies chan Reply
	refuse  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{replies: make(chan Reply, 1)}
}

func (f *fakeBackend) Post(req Request) bool {
	if f.refuse {
		return false
	}
	f.posted = append(f.posted, req)
	return true
}

func (f *fakeBackend) Replies() <-chan Reply { return f.replies }

// answer computes the reply the real worker would send for the last post.
func (f *fakeBackend) answer() Reply {
	req := f.posted[len(f.posted)-1]
	paths, err := Path(req)
	return Reply{Seq: req.Seq, Paths: paths, Err: err, Points: req.Points()}
}

func testFrame(t *testing.T, store *series.Store, g *graph.Graph) graph.Frame {
	t.Helper()
	g.SetSnapshot(store.Snapshot())
	return g.Pass()
}

func newTestGraph() *graph.Graph {
	g := graph.New(graph.NewResolver(graph.WithAnchor(time.Unix(0, 0))), nil)
	g.SetViewport(graph.Viewport{Width: 320, Height: 200, Margin: graph.DefaultMargin})
	return g
}

func TestRendererBackpressure(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	g := newTestGraph()
	backend := newFakeBackend()
	r := NewRenderer(WithBackend(backend))

	store.Append("a", series.Sample{Timestamp: 0, Value: 1})
	if !r.Render(testFrame(t, store, g)) {
		t.Fatalf("first Render did not dispatch")
	}
	if r.Sent() != 1 || !r.InFlight() {
		t.Fatalf("after first render: sent=%d inFlight=%v", r.Sent(), r.InFlight())
	}

	// Two changes while the request is outstanding.
	store.Append("a", series.Sample{Timestamp: 10, Value: 2})
	r.Render(testFrame(t, store, g))
	g.Zoom().Pan(5, 0)
	store.Append("b", series.Sample{Timestamp: 20, Value: 3})
	last := testFrame(t, store, g)
	r.Render(last)

	if r.Sent() != 1 {
		t.Fatalf("sent %d requests while one was in flight, want 1", r.Sent())
	}

	if !r.Receive(backend.answer()) {
		t.Fatalf("Receive did not dispatch the follow-up")
	}
	if r.Sent() != 2 {
		t.Fatalf("sent = %d after first reply, want exactly 2", r.Sent())
	}
	followUp := backend.posted[1]
	if followUp.Domain.Domain() != (graph.Domain{X: last.Live.X.Domain(), Y: last.Live.Y.Domain()}) {
		t.Fatalf("follow-up did not carry the latest frame")
	}
	if _, ok := followUp.Series["b"]; !ok {
		t.Fatalf("follow-up is missing the latest channel")
	}

	if r.Receive(backend.answer()) {
		t.Fatalf("second reply dispatched again without new input")
	}
	if r.Sent() != 2 || r.InFlight() {
		t.Fatalf("final: sent=%d inFlight=%v", r.Sent(), r.InFlight())
	}
	if got := len(r.Paths()); got != 2 {
		t.Fatalf("paths = %d, want 2", got)
	}
}

func TestRendererSkipsUnchangedFrames(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("a", series.Sample{Timestamp: 0, Value: 1}, series.Sample{Timestamp: 5, Value: 2})
	g := newTestGraph()
	backend := newFakeBackend()
	r := NewRenderer(WithBackend(backend))

	frame := testFrame(t, store, g)
	r.Render(frame)
	r.Receive(backend.answer())
	if r.Render(frame) {
		t.Fatalf("identical frame dispatched again")
	}

	// Returning to the requested frame while in flight cancels the pending one.
	store.Append("a", series.Sample{Timestamp: 3, Value: 1.5})
	next := testFrame(t, store, g)
	r.Render(next)
	g.Zoom().Pan(7, 0)
	r.Render(g.Pass())
	g.Zoom().Pan(-7, 0)
	r.Render(g.Pass())
	if r.Receive(backend.answer()) {
		t.Fatalf("follow-up sent although the latest frame equals the in-flight one")
	}
	if r.Sent() != 2 {
		t.Fatalf("sent = %d, want 2", r.Sent())
	}
}

func TestWorkerFallbackParity(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := series.NewStore()
	for i := range 200 {
		store.Append("sin", series.Sample{Timestamp: float64(i * 10), Value: float64(i%17) - 8})
		if i%3 == 0 {
			store.Append("tri", series.Sample{Timestamp: float64(i * 10), Value: float64(i % 40)})
		}
	}
	g := newTestGraph()
	g.Zoom().ZoomAt(100, 80, 3)
	g.Zoom().Pan(-40, 12)
	frame := testFrame(t, store, g)

	worker := StartWorker(ctx, nil)
	async := NewRenderer(WithBackend(worker))
	sync := NewRenderer()

	async.Render(frame)
	select {
	case rep := <-worker.Replies():
		async.Receive(rep)
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not reply")
	}
	sync.Render(frame)

	a, s := async.Paths(), sync.Paths()
	if len(a) != 2 || len(a) != len(s) {
		t.Fatalf("path counts differ: async=%d sync=%d", len(a), len(s))
	}
	for i := range a {
		if a[i].ChannelID != s[i].ChannelID || a[i].D != s[i].D || a[i].Color != s[i].Color {
			t.Fatalf("path %d differs:\nasync %s %q\nsync  %s %q", i, a[i].ChannelID, a[i].D, s[i].ChannelID, s[i].D)
		}
	}
	if a[0].ChannelID != "sin" {
		t.Fatalf("channel order = %s first, want arrival order", a[0].ChannelID)
	}
}

func TestRendererLiveGeometryMatchesScales(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("a", series.Sample{Timestamp: 100, Value: 4}, series.Sample{Timestamp: 900, Value: -4})
	g := newTestGraph()
	g.Zoom().ZoomAt(50, 50, 2)
	frame := testFrame(t, store, g)

	r := NewRenderer()
	r.Render(frame)
	seg := r.Paths()[0].Segments[0]
	for i, s := range frame.Snapshot.Channels["a"] {
		wantX := frame.Live.X.Apply(s.Timestamp)
		wantY := frame.Live.Y.Apply(s.Value)
		if diff := seg[i].X - wantX; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("point %d x = %v, want %v", i, seg[i].X, wantX)
		}
		if diff := seg[i].Y - wantY; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("point %d y = %v, want %v", i, seg[i].Y, wantY)
		}
	}
}

func TestWorkerMalformedRequestFailsLoudly(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	worker := StartWorker(ctx, nil)
	tracker := devtools.NewTracker()
	r := NewRenderer(WithBackend(worker), WithTracker(tracker))

	if !worker.Post(Request{Seq: 9, Dimensions: Dimensions{Width: 10, Height: 10}}) {
		t.Fatalf("Post refused")
	}
	var rep Reply
	select {
	case rep = <-worker.Replies():
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not reply")
	}
	if !errors.Is(rep.Err, ErrMalformedRequest) || rep.Paths != nil || rep.Seq != 9 {
		t.Fatalf("reply = %+v, want ErrMalformedRequest", rep)
	}

	r.Receive(rep)
	if !errors.Is(r.Err(), ErrMalformedRequest) {
		t.Fatalf("renderer Err() = %v", r.Err())
	}
	entries := tracker.LogEntries()
	if len(entries) == 0 || entries[len(entries)-1].Entry.Kind != devtools.EntryRenderError {
		t.Fatalf("tracker did not record the failure: %+v", entries)
	}

	// The worker keeps serving after a bad message.
	ok := Request{
		Seq:        10,
		Dimensions: Dimensions{Width: 10, Height: 10},
		Domain:     DomainPair{XDomain: []float64{0, 1}, YDomain: []float64{0, 1}},
		Series:     map[string][]series.Sample{"a": {{Timestamp: 0, Value: 0}}},
	}
	if !worker.Post(ok) {
		t.Fatalf("Post refused after failure")
	}
	select {
	case rep = <-worker.Replies():
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not reply to the second request")
	}
	if rep.Err != nil || len(rep.Paths) != 1 {
		t.Fatalf("second reply = %+v", rep)
	}
}

func TestRendererFallsBackWhenWorkerRefuses(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("a", series.Sample{Timestamp: 0, Value: 0}, series.Sample{Timestamp: 1, Value: 1})
	backend := newFakeBackend()
	backend.refuse = true
	r := NewRenderer(WithBackend(backend))

	if !r.Render(testFrame(t, store, newTestGraph())) {
		t.Fatalf("Render reported no work")
	}
	if r.Async() || r.InFlight() || r.Sent() != 0 {
		t.Fatalf("renderer did not switch to synchronous mode")
	}
	if len(r.Paths()) != 1 {
		t.Fatalf("synchronous fallback produced %d paths", len(r.Paths()))
	}
}

func TestRendererColors(t *testing.T) {
	t.Parallel()

	store := series.NewStore()
	store.Append("known", series.Sample{Timestamp: 0, Value: 0})
	store.Append("other", series.Sample{Timestamp: 1, Value: 1})
	r := NewRenderer(WithColors(func(id string) string {
		if id == "known" {
			return "rgb(1, 2, 3)"
		}
		return ""
	}))
	r.Render(testFrame(t, store, newTestGraph()))

	paths := r.Paths()
	if paths[0].Color != "rgb(1, 2, 3)" {
		t.Fatalf("device colour = %q", paths[0].Color)
	}
	if paths[1].Color != FallbackPalette[1] {
		t.Fatalf("fallback colour = %q, want %q", paths[1].Color, FallbackPalette[1])
	}
}

func TestWorkerStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	worker := StartWorker(ctx, nil)
	cancel()
	select {
	case <-worker.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop")
	}
	if worker.Post(Request{}) {
		t.Fatalf("Post accepted after stop")
	}
}
