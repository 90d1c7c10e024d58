package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Reply is the worker's answer to one request.
type Reply struct {
	Seq     uint64
	Paths   []PathData
	Err     error
	Elapsed time.Duration
	Points  int
}

// Worker computes paths on its own goroutine. Its request channel holds a
// single message; the Renderer never posts a second one before the reply.
type Worker struct {
	requests chan Request
	replies  chan Reply
	done     chan struct{}
	logger   *slog.Logger
}

// StartWorker launches a worker that runs until ctx is cancelled.
func StartWorker(ctx context.Context, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Worker{
		requests: make(chan Request, 1),
		replies:  make(chan Reply, 1),
		done:     make(chan struct{}),
		logger:   logger.With("component", "render.worker"),
	}
	go w.run(ctx)
	return w
}

// Post hands req to the worker without blocking. It reports false when
// the worker has stopped or already holds an unread request.
func (w *Worker) Post(req Request) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.requests <- req:
		return true
	default:
		return false
	}
}

// Replies delivers one Reply per accepted request.
func (w *Worker) Replies() <-chan Reply { return w.replies }

// Done is closed once the worker has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			reply := w.handle(req)
			select {
			case w.replies <- reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handle(req Request) (reply Reply) {
	start := time.Now()
	reply = Reply{Seq: req.Seq, Points: req.Points()}
	defer func() {
		if r := recover(); r != nil {
			reply.Paths = nil
			reply.Err = fmt.Errorf("render worker panic: %v", r)
		}
		reply.Elapsed = time.Since(start)
		if reply.Err != nil {
			w.logger.Error("render request failed", "seq", req.Seq, "error", reply.Err)
			return
		}
		w.logger.Debug("render request done",
			"seq", req.Seq,
			"channels", len(reply.Paths),
			"points", reply.Points,
			"elapsed", reply.Elapsed,
		)
	}()
	reply.Paths, reply.Err = Path(req)
	return reply
}
