package series

import (
	"slices"
	"sync"
)

// Batch is a run of samples for one channel.
type Batch struct {
	Channel string
	Samples []Sample
}

// Snapshot is an immutable view of the store at one version.
//
// Channel slices are capped at their length so appends made after the
// snapshot was taken never become visible through it.
type Snapshot struct {
	Version  uint64
	Order    []string
	Channels map[string][]Sample
	Bounds   Bounds
}

// EmptySnapshot returns a snapshot with no channels and sentinel bounds.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Channels: map[string][]Sample{},
		Bounds:   NewBounds(),
	}
}

// Len returns the total number of samples across all channels.
func (s Snapshot) Len() int {
	total := 0
	for _, samples := range s.Channels {
		total += len(samples)
	}
	return total
}

// Empty reports whether the snapshot holds no usable data.
func (s Snapshot) Empty() bool {
	return s.Bounds.Empty()
}

// Each calls fn for every channel in arrival order.
func (s Snapshot) Each(fn func(channel string, samples []Sample)) {
	for _, channel := range s.Order {
		fn(channel, s.Channels[channel])
	}
}

// Store owns the channel series and their bounds. Data sources append from
// their own goroutines; the UI reads consistent snapshots.
type Store struct {
	mu       sync.RWMutex
	channels map[string][]Sample
	order    []string
	bounds   Bounds
	version  uint64
	dropped  uint64
	notify   chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		channels: make(map[string][]Sample),
		bounds:   NewBounds(),
		notify:   make(chan struct{}, 1),
	}
}

// Append adds samples to a channel and returns how many were accepted.
func (s *Store) Append(channel string, samples ...Sample) int {
	return s.AppendBatches(Batch{Channel: channel, Samples: samples})
}

// AppendBatches adds several channels' samples in one update, so a reader
// never observes bounds that disagree with the series. Non-finite samples
// are dropped and counted.
func (s *Store) AppendBatches(batches ...Batch) int {
	s.mu.Lock()
	accepted := 0
	for _, batch := range batches {
		if batch.Channel == "" {
			s.dropped += uint64(len(batch.Samples))
			continue
		}
		existing, known := s.channels[batch.Channel]
		for _, sample := range batch.Samples {
			if !s.bounds.Apply(sample) {
				s.dropped++
				continue
			}
			existing = append(existing, sample)
			accepted++
		}
		if !known && len(existing) > 0 {
			s.order = append(s.order, batch.Channel)
		}
		if len(existing) > 0 {
			s.channels[batch.Channel] = existing
		}
	}
	if accepted > 0 {
		s.version++
	}
	s.mu.Unlock()

	if accepted > 0 {
		s.signal()
	}
	return accepted
}

// Snapshot returns the current immutable view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make(map[string][]Sample, len(s.channels))
	for channel, samples := range s.channels {
		channels[channel] = samples[:len(samples):len(samples)]
	}
	return Snapshot{
		Version:  s.version,
		Order:    slices.Clone(s.order),
		Channels: channels,
		Bounds:   s.bounds,
	}
}

// Clear drops all samples and resets the bounds. Existing snapshots keep
// their data since new backing arrays are allocated afterwards.
func (s *Store) Clear() {
	s.mu.Lock()
	s.channels = make(map[string][]Sample)
	s.order = nil
	s.bounds.Reset()
	s.version++
	s.mu.Unlock()
	s.signal()
}

// Version returns the current version. It increases on every change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Bounds returns the running bounds.
func (s *Store) Bounds() Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds
}

// Dropped returns how many samples were rejected as malformed.
func (s *Store) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// Changed returns a channel that receives a value after one or more
// changes. Bursts coalesce into a single notification.
func (s *Store) Changed() <-chan struct{} {
	return s.notify
}

func (s *Store) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
