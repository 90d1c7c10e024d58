// Package devtools records render pipeline and data source activity in a
// bounded ring buffer for the in-app diagnostics panel.
package devtools

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLogLimit = 500

type originKey struct{}

// EntryKind describes the type of a tracked entry.
type EntryKind int

const (
	// EntryCommand represents a single Redis command issued by a source.
	EntryCommand EntryKind = iota
	// EntryPipelineBegin marks the start of a pipeline execution.
	EntryPipelineBegin
	// EntryPipelineExec marks the execution of a pipeline.
	EntryPipelineExec
	// EntryRenderRequest marks a request handed to the path worker.
	EntryRenderRequest
	// EntryRenderReply marks geometry applied from the worker or the
	// synchronous path.
	EntryRenderReply
	// EntryRenderError marks a request the worker refused.
	EntryRenderError
	// EntrySource records a data source lifecycle event.
	EntrySource
)

func (k EntryKind) String() string {
	switch k {
	case EntryCommand:
		return "redis"
	case EntryPipelineBegin:
		return "pipeline"
	case EntryPipelineExec:
		return "exec"
	case EntryRenderRequest:
		return "request"
	case EntryRenderReply:
		return "reply"
	case EntryRenderError:
		return "error"
	case EntrySource:
		return "source"
	default:
		return "?"
	}
}

// Entry captures a single tracked entry.
type Entry struct {
	Kind     EntryKind
	Text     string
	Duration time.Duration
}

// LogEntry captures a single tracked log line.
type LogEntry struct {
	Seq    uint64
	Time   time.Time
	Origin string
	Entry  Entry
}

// Tracker is a fixed-size log of diagnostic entries. A nil Tracker
// discards everything, so callers never need to check.
type Tracker struct {
	logLimit int
	logMu    sync.RWMutex
	log      []LogEntry
	logHead  int
	logFull  bool
	logSeq   uint64
}

// NewTracker creates a tracker holding the default number of entries.
func NewTracker() *Tracker {
	return NewTrackerWithLimit(defaultLogLimit)
}

// NewTrackerWithLimit creates a tracker holding at most limit entries.
func NewTrackerWithLimit(limit int) *Tracker {
	return &Tracker{logLimit: max(limit, 0)}
}

// WithOrigin returns a context carrying the origin label.
func WithOrigin(ctx context.Context, origin string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if origin == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext extracts the origin label from context.
func OriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if origin, ok := ctx.Value(originKey{}).(string); ok {
		return origin
	}
	return ""
}

// LogEntries returns the retained entries in chronological order.
func (t *Tracker) LogEntries() []LogEntry {
	if t == nil {
		return nil
	}
	t.logMu.RLock()
	defer t.logMu.RUnlock()
	if len(t.log) == 0 {
		return nil
	}
	if !t.logFull {
		return append([]LogEntry(nil), t.log...)
	}
	result := make([]LogEntry, 0, len(t.log))
	result = append(result, t.log[t.logHead:]...)
	result = append(result, t.log[:t.logHead]...)
	return result
}

// Len returns the number of retained entries.
func (t *Tracker) Len() int {
	if t == nil {
		return 0
	}
	t.logMu.RLock()
	defer t.logMu.RUnlock()
	return len(t.log)
}

// AppendLog appends a log entry to the ring buffer.
func (t *Tracker) AppendLog(entry LogEntry) {
	if t == nil || t.logLimit == 0 {
		return
	}

	t.logMu.Lock()
	defer t.logMu.Unlock()
	entry.Seq = t.logSeq
	t.logSeq++
	if len(t.log) < t.logLimit {
		t.log = append(t.log, entry)
		t.logFull = len(t.log) == t.logLimit
		return
	}
	t.log[t.logHead] = entry
	t.logHead = (t.logHead + 1) % t.logLimit
}

// Record appends an entry stamped with the current time. The origin comes
// from ctx, or from the nearest ui or source frame on the call stack.
func (t *Tracker) Record(ctx context.Context, entry Entry) {
	if t == nil {
		return
	}
	origin := OriginFromContext(ctx)
	if origin == "" {
		origin = originFromCallers()
	}
	if origin == "" {
		origin = "unknown"
	}
	t.AppendLog(LogEntry{
		Time:   time.Now(),
		Origin: origin,
		Entry:  entry,
	})
}

// Recordf is Record with a formatted text.
func (t *Tracker) Recordf(ctx context.Context, kind EntryKind, d time.Duration, format string, args ...any) {
	if t == nil {
		return
	}
	t.Record(ctx, Entry{Kind: kind, Text: fmt.Sprintf(format, args...), Duration: d})
}

// Hook returns a Redis hook for tracking commands.
func (t *Tracker) Hook() redis.Hook {
	return hook{tracker: t}
}

// FormatDuration renders a compact duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

type hook struct {
	tracker *Tracker
}

func (h hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.tracker.Record(ctx, Entry{
			Kind:     EntryCommand,
			Text:     formatCommand(cmd),
			Duration: time.Since(start),
		})
		return err
	}
}

func (h hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if len(cmds) == 0 {
			return next(ctx, cmds)
		}
		h.tracker.Record(ctx, Entry{Kind: EntryPipelineBegin})
		start := time.Now()
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			h.tracker.Record(ctx, Entry{Kind: EntryCommand, Text: formatCommand(cmd)})
		}
		h.tracker.Record(ctx, Entry{Kind: EntryPipelineExec, Duration: time.Since(start)})
		return err
	}
}

func originFromCallers() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(4, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var fallback string
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if fn == "" {
			if !more {
				break
			}
			continue
		}
		if strings.Contains(fn, "/internal/ui/") || strings.Contains(fn, "/internal/ui.") {
			return shortFuncName(fn)
		}
		if fallback == "" && (strings.Contains(fn, "/internal/source.") || strings.Contains(fn, "/internal/render.")) {
			fallback = shortFuncName(fn)
		}
		if !more {
			break
		}
	}
	return fallback
}

func shortFuncName(fn string) string {
	if idx := strings.LastIndex(fn, "/"); idx >= 0 {
		fn = fn[idx+1:]
	}
	fn = strings.TrimSuffix(fn, ".func1")
	fn = strings.ReplaceAll(fn, "(*", "")
	fn = strings.ReplaceAll(fn, ")", "")
	return fn
}

func formatCommand(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) == 0 {
		return cmd.Name()
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprint(arg)
	}
	return strings.Join(parts, " ")
}
