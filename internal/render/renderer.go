package render

import (
	"context"
	"log/slog"
	"time"

	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/graph"
)

// Backend is the asynchronous side of the renderer. *Worker implements it.
type Backend interface {
	Post(Request) bool
	Replies() <-chan Reply
}

// ColorFunc returns the display colour of a channel, or "" when unknown.
type ColorFunc func(channelID string) string

// FallbackPalette colours channels that have no device colour.
var FallbackPalette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2",
	"#59A14F", "#EDC948", "#B07AA1", "#FF9DA7",
}

// RenderedPath is one channel's geometry with its display colour attached.
type RenderedPath struct {
	ChannelID string
	D         string
	Color     string
	Segments  [][]Point
}

// inputKey identifies everything path geometry depends on.
type inputKey struct {
	version  uint64
	live     graph.Scales
	viewport graph.Viewport
}

func keyOf(f graph.Frame) inputKey {
	return inputKey{version: f.Snapshot.Version, live: f.Live, viewport: f.Viewport}
}

// Renderer keeps at most one request in flight. Frames arriving while a
// request is outstanding overwrite a single pending slot; when the reply
// lands, exactly one follow-up is sent if the pending frame differs from
// what was rendered.
type Renderer struct {
	backend Backend
	colors  ColorFunc
	logger  *slog.Logger
	tracker *devtools.Tracker

	seq      uint64
	inFlight bool
	sent     int

	requested  inputKey
	hasRequest bool
	pending    graph.Frame
	hasPending bool

	paths   []PathData
	lastErr error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackend sets the worker. Without one every render is synchronous.
func WithBackend(b Backend) Option {
	return func(r *Renderer) { r.backend = b }
}

// WithColors sets the channel colour lookup.
func WithColors(fn ColorFunc) Option {
	return func(r *Renderer) { r.colors = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracker records dispatches and replies in the devtools log.
func WithTracker(t *devtools.Tracker) Option {
	return func(r *Renderer) { r.tracker = t }
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "render")
	return r
}

// Async reports whether a worker backend is in use.
func (r *Renderer) Async() bool { return r.backend != nil }

// InFlight reports whether a worker request is outstanding.
func (r *Renderer) InFlight() bool { return r.inFlight }

// Sent returns how many requests were handed to the worker.
func (r *Renderer) Sent() int { return r.sent }

// Err returns the error of the most recent failed render, if any.
func (r *Renderer) Err() error { return r.lastErr }

// Render asks for geometry matching frame. It reports whether work was
// started (a worker dispatch or a synchronous computation). Frames equal
// to the last requested one are ignored.
func (r *Renderer) Render(frame graph.Frame) bool {
	key := keyOf(frame)
	if r.hasRequest && key == r.requested && !r.hasPending {
		return false
	}
	if r.backend == nil {
		r.renderSync(frame)
		return true
	}
	if r.inFlight {
		r.pending, r.hasPending = frame, true
		return false
	}
	return r.dispatch(frame)
}

// Receive applies a worker reply and, if frames arrived meanwhile,
// dispatches exactly one follow-up. It reports whether a follow-up went
// out.
func (r *Renderer) Receive(rep Reply) bool {
	r.inFlight = false
	r.apply(rep, "worker")

	if !r.hasPending {
		return false
	}
	frame := r.pending
	r.pending, r.hasPending = graph.Frame{}, false
	if r.hasRequest && keyOf(frame) == r.requested {
		return false
	}
	return r.dispatch(frame)
}

func (r *Renderer) dispatch(frame graph.Frame) bool {
	r.seq++
	req := NewRequest(r.seq, frame)
	if !r.backend.Post(req) {
		r.logger.Warn("render worker unavailable, falling back to synchronous rendering", "seq", req.Seq)
		r.backend = nil
		r.renderSync(frame)
		return true
	}
	r.inFlight = true
	r.sent++
	r.requested, r.hasRequest = keyOf(frame), true
	r.tracker.Recordf(context.Background(), devtools.EntryRenderRequest, 0,
		"seq=%d channels=%d points=%d", req.Seq, len(req.Series), req.Points())
	r.logger.Debug("render request dispatched", "seq", req.Seq, "points", req.Points())
	return true
}

func (r *Renderer) renderSync(frame graph.Frame) {
	r.seq++
	req := NewRequest(r.seq, frame)
	start := time.Now()
	paths, err := Path(req)
	r.requested, r.hasRequest = keyOf(frame), true
	r.apply(Reply{Seq: req.Seq, Paths: paths, Err: err, Elapsed: time.Since(start), Points: req.Points()}, "sync")
}

func (r *Renderer) apply(rep Reply, via string) {
	if rep.Err != nil {
		r.lastErr = rep.Err
		r.logger.Error("render failed", "seq", rep.Seq, "via", via, "error", rep.Err)
		r.tracker.Recordf(context.Background(), devtools.EntryRenderError, rep.Elapsed,
			"seq=%d %v", rep.Seq, rep.Err)
		return
	}
	r.lastErr = nil
	r.paths = rep.Paths
	r.tracker.Recordf(context.Background(), devtools.EntryRenderReply, rep.Elapsed,
		"seq=%d via=%s channels=%d points=%d", rep.Seq, via, len(rep.Paths), rep.Points)
}

// Paths returns the last applied geometry with colours attached. A
// channel without a device colour gets a palette colour by position.
func (r *Renderer) Paths() []RenderedPath {
	out := make([]RenderedPath, len(r.paths))
	for i, p := range r.paths {
		out[i] = RenderedPath{
			ChannelID: p.ID,
			D:         p.D,
			Color:     r.colorOf(p.ID, i),
			Segments:  p.Segments,
		}
	}
	return out
}

func (r *Renderer) colorOf(id string, index int) string {
	if r.colors != nil {
		if c := r.colors(id); c != "" {
			return c
		}
	}
	return FallbackPalette[index%len(FallbackPalette)]
}

// Reset drops geometry and any pending frame. An in-flight reply is still
// accepted when it arrives.
func (r *Renderer) Reset() {
	r.paths = nil
	r.lastErr = nil
	r.pending, r.hasPending = graph.Frame{}, false
	r.hasRequest = false
}
