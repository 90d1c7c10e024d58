package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kpumuk/lazyscope/internal/devtools"
)

// Kind names a source implementation.
type Kind string

const (
	KindRandom    Kind = "random"
	KindSine      Kind = "sine"
	KindRedis     Kind = "redis"
	KindWebSocket Kind = "websocket"
	KindCSV       Kind = "csv"
	KindHost      Kind = "host"
)

// Kinds lists every registered source.
func Kinds() []Kind {
	return []Kind{KindRandom, KindSine, KindRedis, KindWebSocket, KindCSV, KindHost}
}

// Options configures every source. Each source reads the fields it needs.
type Options struct {
	Logger  *slog.Logger
	Tracker *devtools.Tracker
	// Now is the clock synthetic sources stamp samples with.
	Now func() time.Time

	// Interval between generated samples (random, sine, host).
	Interval time.Duration

	// Sine generator shape.
	Channels  int
	Frequency float64
	Amplitude float64
	Noise     float64

	// Redis stream source.
	RedisURL  string
	Stream    string
	FromStart bool
	ReadBlock time.Duration
	ReadCount int64

	// OmnAIScope websocket server base URL, e.g. http://127.0.0.1:8080.
	URL        string
	SkipFrames int

	// CSV files to import.
	Files []string
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) interval(def time.Duration) time.Duration {
	if o.Interval > 0 {
		return o.Interval
	}
	return def
}

// Open creates the source of the given kind.
func Open(kind Kind, opts Options) (Source, error) {
	switch kind {
	case KindRandom:
		return NewRandom(opts), nil
	case KindSine:
		return NewSine(opts), nil
	case KindRedis:
		return NewRedis(opts)
	case KindWebSocket:
		return NewWebSocket(opts)
	case KindCSV:
		return NewCSV(opts)
	case KindHost:
		return NewHost(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
}
