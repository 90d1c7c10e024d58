package source

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kpumuk/lazyscope/internal/series"
)

var sineColors = []RGB{
	{R: 255, G: 193, B: 7},
	{R: 0, G: 188, B: 212},
	{R: 233, G: 30, B: 99},
	{R: 139, G: 195, B: 74},
	{R: 156, G: 39, B: 176},
	{R: 255, G: 87, B: 34},
}

// Sine emits phase-shifted waves on several channels, like a scope probing
// a multi-phase signal.
type Sine struct {
	base
	opts     Options
	channels []string
	rng      *rand.Rand
	started  time.Time
}

// NewSine creates a sine source. Defaults: 3 channels, 0.5 Hz, amplitude
// 1, 50 ms between samples.
func NewSine(opts Options) *Sine {
	if opts.Channels <= 0 {
		opts.Channels = 3
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 0.5
	}
	if opts.Amplitude == 0 {
		opts.Amplitude = 1
	}
	s := &Sine{
		opts: opts,
		rng:  rand.New(rand.NewPCG(1, uint64(opts.Channels))),
	}
	s.init(string(KindSine), opts.Logger, opts.Tracker)

	devices := make([]Device, opts.Channels)
	s.channels = make([]string, opts.Channels)
	for i := range opts.Channels {
		id := fmt.Sprintf("ch%d", i+1)
		s.channels[i] = id
		devices[i] = Device{UUID: id, Color: sineColors[i%len(sineColors)], HasColor: true}
	}
	s.setDevices(devices)
	return s
}

// Connect starts the generator.
func (s *Sine) Connect(ctx context.Context) error {
	s.started = s.opts.now()
	s.start(ctx, s.run)
	return nil
}

// Sample returns the batches for time t. Exposed so tests can check the
// waveform without a ticker.
func (s *Sine) Sample(t time.Time) []series.Batch {
	elapsed := t.Sub(s.started).Seconds()
	batches := make([]series.Batch, len(s.channels))
	for i, id := range s.channels {
		phase := 2 * math.Pi * float64(i) / float64(len(s.channels))
		v := s.opts.Amplitude * math.Sin(2*math.Pi*s.opts.Frequency*elapsed+phase)
		if s.opts.Noise > 0 {
			v += s.rng.NormFloat64() * s.opts.Noise
		}
		batches[i] = series.Batch{Channel: id, Samples: []series.Sample{series.At(t, v)}}
	}
	return batches
}

func (s *Sine) run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.interval(50 * time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.store.AppendBatches(s.Sample(s.opts.now())...)
		}
	}
}
