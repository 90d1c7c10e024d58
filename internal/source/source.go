// Package source provides the data sources that feed channel samples into
// a series.Store: synthetic generators, a Redis stream, the OmnAIScope
// websocket protocol, CSV files and local host metrics.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/series"
)

var (
	// ErrNotConnected is returned by operations that need a live source.
	ErrNotConnected = errors.New("source not connected")
	// ErrUnknownSource is returned by Open for an unregistered kind.
	ErrUnknownSource = errors.New("unknown source")
)

// Source produces channel samples into its store.
type Source interface {
	// Name is a short human label shown in the status bar.
	Name() string
	// Connect starts producing samples. Setup failures are returned;
	// failures after setup are reported on Errors.
	Connect(ctx context.Context) error
	// Disconnect stops producing and waits for background work to end.
	Disconnect()
	// ClearData drops every sample collected so far.
	ClearData()
	Store() *series.Store
	Devices() []Device
	Connected() bool
	Errors() <-chan error
}

// RGB is a device display colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String formats the colour as a CSS rgb() triple.
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses "r,g,b" with components in 0..255.
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("parse colour %q: want r,g,b", s)
	}
	var out [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
		out[i] = uint8(n)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// Device is a channel's metadata.
type Device struct {
	UUID     string `json:"uuid"`
	Color    RGB    `json:"color"`
	HasColor bool   `json:"-"`
}

// DeviceName returns the display name of a device from the device table.
func DeviceName(d Device) string {
	color := "No Color"
	if d.HasColor {
		color = fmt.Sprintf("RGB(%d,%d,%d)", d.Color.R, d.Color.G, d.Color.B)
	}
	return fmt.Sprintf("OmnAIScope %s (%s)", prefix(d.UUID, 6), color)
}

// UnknownDeviceName names a UUID that is missing from the device table.
func UnknownDeviceName(uuid string) string {
	return "OmnAIScope " + prefix(uuid, 8)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Lookup finds a device by UUID.
func Lookup(devices []Device, uuid string) (Device, bool) {
	i := slices.IndexFunc(devices, func(d Device) bool { return d.UUID == uuid })
	if i < 0 {
		return Device{}, false
	}
	return devices[i], true
}

// base carries what every source shares: the store, the device table,
// the error channel and the lifecycle of one background loop.
type base struct {
	name    string
	store   *series.Store
	logger  *slog.Logger
	tracker *devtools.Tracker

	mu      sync.RWMutex
	devices []Device
	cancel  context.CancelFunc
	done    chan struct{}

	connected atomic.Bool
	errs      chan error
}

func (b *base) init(name string, logger *slog.Logger, tracker *devtools.Tracker) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b.name = name
	b.store = series.NewStore()
	b.logger = logger.With("source", name)
	b.tracker = tracker
	b.errs = make(chan error, 8)
}

func (b *base) Name() string         { return b.name }
func (b *base) Store() *series.Store { return b.store }
func (b *base) Connected() bool      { return b.connected.Load() }
func (b *base) Errors() <-chan error { return b.errs }

func (b *base) Devices() []Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.devices)
}

func (b *base) setDevices(devices []Device) {
	b.mu.Lock()
	b.devices = devices
	b.mu.Unlock()
}

func (b *base) addDevice(d Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.devices, func(x Device) bool { return x.UUID == d.UUID }) {
		return
	}
	b.devices = append(b.devices, d)
}

func (b *base) ClearData() {
	b.store.Clear()
	b.record("clear")
}

// report publishes a runtime error without blocking the producer.
func (b *base) report(err error) {
	if err == nil {
		return
	}
	b.logger.Error("source error", "error", err)
	b.tracker.Recordf(devtools.WithOrigin(context.Background(), "source."+b.name), devtools.EntrySource, 0, "error: %v", err)
	select {
	case b.errs <- err:
	default:
	}
}

func (b *base) record(event string) {
	b.tracker.Recordf(devtools.WithOrigin(context.Background(), "source."+b.name), devtools.EntrySource, 0, "%s", event)
}

// start runs loop on its own goroutine until ctx is cancelled, Disconnect
// is called or loop returns. A second start while running is a no-op.
func (b *base) start(ctx context.Context, loop func(ctx context.Context) error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel, b.done = cancel, done
	b.mu.Unlock()

	b.connected.Store(true)
	b.record("connect")
	b.logger.Info("source connected")
	go func() {
		defer close(done)
		defer b.connected.Store(false)
		if err := loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.report(err)
		}
	}()
}

func (b *base) running() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cancel != nil
}

func (b *base) Disconnect() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	b.connected.Store(false)
	b.record("disconnect")
	b.logger.Info("source disconnected")
}
