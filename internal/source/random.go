package source

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/kpumuk/lazyscope/internal/series"
)

// RandomChannel is the single channel the random source writes.
const RandomChannel = "dummy"

// Random emits one uniformly distributed value in [0, 100) per interval.
type Random struct {
	base
	opts Options
	rng  *rand.Rand
}

// NewRandom creates a random source ticking once a second by default.
func NewRandom(opts Options) *Random {
	r := &Random{
		opts: opts,
		rng:  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	r.init(string(KindRandom), opts.Logger, opts.Tracker)
	r.setDevices([]Device{{UUID: RandomChannel, Color: RGB{B: 255}, HasColor: true}})
	return r
}

// Connect starts the generator.
func (r *Random) Connect(ctx context.Context) error {
	r.start(ctx, r.run)
	return nil
}

func (r *Random) run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.interval(time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.store.Append(RandomChannel, series.At(r.opts.now(), r.rng.Float64()*100))
		}
	}
}
