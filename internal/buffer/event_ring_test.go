package buffer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/computer-agent/backend/internal/model"
)

func TestEventRing(t *testing.T) {
	t.Run("keeps events in order under capacity", func(t *testing.T) {
		ring := NewEventRing(5)

		for i := 0; i < 3; i++ {
			ring.Append(model.TextEvent(fmt.Sprintf("event %d", i)))
		}

		snap := ring.Snapshot()
		if len(snap) != 3 {
			t.Fatalf("Expected 3 events, got %d", len(snap))
		}
		for i, ev := range snap {
			if ev.Text != fmt.Sprintf("event %d", i) {
				t.Errorf("Event %d out of order: '%s'", i, ev.Text)
			}
		}
	})

	t.Run("discards oldest when full", func(t *testing.T) {
		ring := NewEventRing(3)

		for i := 0; i < 5; i++ {
			ring.Append(model.TextEvent(fmt.Sprintf("event %d", i)))
		}

		snap := ring.Snapshot()
		if len(snap) != 3 {
			t.Fatalf("Expected 3 events, got %d", len(snap))
		}
		if snap[0].Text != "event 2" || snap[2].Text != "event 4" {
			t.Errorf("Expected events 2..4, got %s..%s", snap[0].Text, snap[2].Text)
		}
	})

	t.Run("snapshot of empty ring is nil", func(t *testing.T) {
		ring := NewEventRing(3)
		if snap := ring.Snapshot(); snap != nil {
			t.Errorf("Expected nil snapshot, got %v", snap)
		}
	})

	t.Run("clear empties the ring", func(t *testing.T) {
		ring := NewEventRing(3)
		ring.Append(model.TextEvent("a"))
		ring.Clear()
		if ring.Len() != 0 {
			t.Errorf("Expected empty ring, got %d events", ring.Len())
		}
	})

	t.Run("non-positive capacity defaults to one", func(t *testing.T) {
		ring := NewEventRing(0)
		if ring.Cap() != 1 {
			t.Errorf("Expected capacity 1, got %d", ring.Cap())
		}
		ring.Append(model.TextEvent("a"))
		ring.Append(model.TextEvent("b"))
		snap := ring.Snapshot()
		if len(snap) != 1 || snap[0].Text != "b" {
			t.Errorf("Expected only the latest event, got %v", snap)
		}
	})
}

func TestEventRing_ConcurrentAccess(t *testing.T) {
	ring := NewEventRing(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ring.Append(model.TextEvent(fmt.Sprintf("writer %d event %d", n, j)))
				ring.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if ring.Len() != 64 {
		t.Errorf("Expected a full ring of 64, got %d", ring.Len())
	}
}
