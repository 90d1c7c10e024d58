package series

import (
	"math"
	"sync"
	"testing"
)

func TestStoreAppendKeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Append("b", Sample{Timestamp: 2, Value: 1})
	s.Append("a", Sample{Timestamp: 1, Value: 3})
	s.Append("b", Sample{Timestamp: 0, Value: 2})

	snap := s.Snapshot()
	if len(snap.Order) != 2 || snap.Order[0] != "b" || snap.Order[1] != "a" {
		t.Fatalf("Order = %v, want [b a]", snap.Order)
	}
	b := snap.Channels["b"]
	if len(b) != 2 || b[0].Timestamp != 2 || b[1].Timestamp != 0 {
		t.Fatalf("channel b = %+v, want arrival order", b)
	}
	want := Bounds{MinTimestamp: 0, MaxTimestamp: 2, MinValue: 1, MaxValue: 3}
	if snap.Bounds != want {
		t.Fatalf("Bounds = %+v, want %+v", snap.Bounds, want)
	}
	if snap.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", snap.Len())
	}
}

func TestStoreDropsMalformedSamples(t *testing.T) {
	t.Parallel()

	s := NewStore()
	got := s.AppendBatches(
		Batch{Channel: "a", Samples: []Sample{{Timestamp: 1, Value: math.NaN()}, {Timestamp: 2, Value: 4}}},
		Batch{Channel: "", Samples: []Sample{{Timestamp: 3, Value: 1}}},
		Batch{Channel: "b", Samples: []Sample{{Timestamp: math.Inf(1), Value: 1}}},
	)
	if got != 1 {
		t.Fatalf("AppendBatches accepted %d, want 1", got)
	}
	if s.Dropped() != 3 {
		t.Fatalf("Dropped() = %d, want 3", s.Dropped())
	}
	snap := s.Snapshot()
	if _, ok := snap.Channels["b"]; ok {
		t.Fatalf("channel b should not exist when every sample was dropped")
	}
	if len(snap.Order) != 1 {
		t.Fatalf("Order = %v, want [a]", snap.Order)
	}
}

func TestStoreVersionOnlyMovesOnChange(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if s.Version() != 0 {
		t.Fatalf("initial Version() = %d", s.Version())
	}
	s.Append("a", Sample{Timestamp: 1, Value: math.NaN()})
	if s.Version() != 0 {
		t.Fatalf("Version() moved on a rejected append")
	}
	s.Append("a", Sample{Timestamp: 1, Value: 1})
	if s.Version() != 1 {
		t.Fatalf("Version() = %d, want 1", s.Version())
	}
	s.Clear()
	if s.Version() != 2 {
		t.Fatalf("Version() after Clear = %d, want 2", s.Version())
	}
	if !s.Bounds().Empty() {
		t.Fatalf("Bounds() after Clear should be empty")
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Append("a", Sample{Timestamp: 1, Value: 1}, Sample{Timestamp: 2, Value: 2})
	snap := s.Snapshot()

	s.Append("a", Sample{Timestamp: 3, Value: 100})
	s.Append("c", Sample{Timestamp: 4, Value: -100})

	if len(snap.Channels["a"]) != 2 {
		t.Fatalf("snapshot channel grew to %d samples", len(snap.Channels["a"]))
	}
	if _, ok := snap.Channels["c"]; ok {
		t.Fatalf("snapshot sees a channel added later")
	}
	if snap.Bounds.MaxValue != 2 {
		t.Fatalf("snapshot bounds changed: %+v", snap.Bounds)
	}

	s.Clear()
	if len(snap.Channels["a"]) != 2 || snap.Channels["a"][1].Value != 2 {
		t.Fatalf("snapshot data lost after Clear: %+v", snap.Channels["a"])
	}
}

func TestStoreChangedCoalesces(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for i := range 10 {
		s.Append("a", Sample{Timestamp: float64(i), Value: 1})
	}

	select {
	case <-s.Changed():
	default:
		t.Fatalf("expected a change notification")
	}
	select {
	case <-s.Changed():
		t.Fatalf("expected bursts to coalesce into one notification")
	default:
	}
}

func TestStoreConcurrentAppendAndSnapshot(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				s.Append("ch", Sample{Timestamp: float64(w*1000 + i), Value: float64(i)})
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			snap := s.Snapshot()
			for _, sample := range snap.Channels["ch"] {
				if !snap.Bounds.Contains(sample) {
					t.Errorf("sample %+v outside snapshot bounds %+v", sample, snap.Bounds)
					return
				}
			}
		}
	}()

	wg.Wait()
	<-done

	if got := s.Snapshot().Len(); got != 800 {
		t.Fatalf("Len() = %d, want 800", got)
	}
}

func TestEmptySnapshot(t *testing.T) {
	t.Parallel()

	snap := EmptySnapshot()
	if !snap.Empty() || snap.Len() != 0 {
		t.Fatalf("EmptySnapshot() = %+v, want empty", snap)
	}
	calls := 0
	snap.Each(func(string, []Sample) { calls++ })
	if calls != 0 {
		t.Fatalf("Each visited %d channels", calls)
	}
}
