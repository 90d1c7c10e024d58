package source

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/kpumuk/lazyscope/internal/series"
)

// Host channels.
const (
	HostCPU    = "cpu"
	HostMemory = "mem"
)

// Host samples local CPU and memory utilisation in percent.
type Host struct {
	base
	opts   Options
	sample func(ctx context.Context) (cpuPct, memPct float64, err error)
}

// NewHost creates a host metrics source sampling once a second by default.
func NewHost(opts Options) *Host {
	h := &Host{opts: opts, sample: readHost}
	h.init(string(KindHost), opts.Logger, opts.Tracker)
	h.setDevices([]Device{
		{UUID: HostCPU, Color: RGB{R: 244, G: 67, B: 54}, HasColor: true},
		{UUID: HostMemory, Color: RGB{R: 33, G: 150, B: 243}, HasColor: true},
	})
	return h
}

func readHost(ctx context.Context) (float64, float64, error) {
	// Interval 0 compares against the previous call, so the first
	// reading after start may be 0.
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("read cpu: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read memory: %w", err)
	}
	var cpuPct float64
	if len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	return cpuPct, vm.UsedPercent, nil
}

// Connect starts sampling.
func (h *Host) Connect(ctx context.Context) error {
	if _, _, err := h.sample(ctx); err != nil {
		return err
	}
	h.start(ctx, h.run)
	return nil
}

func (h *Host) run(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.interval(time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.poll(ctx)
		}
	}
}

func (h *Host) poll(ctx context.Context) {
	cpuPct, memPct, err := h.sample(ctx)
	if err != nil {
		h.report(err)
		return
	}
	now := h.opts.now()
	h.store.AppendBatches(
		series.Batch{Channel: HostCPU, Samples: []series.Sample{series.At(now, cpuPct)}},
		series.Batch{Channel: HostMemory, Samples: []series.Sample{series.At(now, memPct)}},
	)
}
