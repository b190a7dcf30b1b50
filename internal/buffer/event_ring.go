// Package buffer provides a bounded event backlog for session catch-up.
package buffer

import (
	"sync"

	"github.com/computer-agent/backend/internal/model"
)

// EventRing is a thread-safe bounded buffer that keeps the most recent events
// broadcast on a session. When full, the oldest events are discarded.
//
// It lets a subscriber that attaches mid-conversation receive recent progress
// before live events start flowing.
type EventRing struct {
	events   []model.Event
	capacity int
	mu       sync.RWMutex
}

// NewEventRing creates a ring with the given capacity.
// The capacity must be greater than 0; if not, it defaults to 1.
func NewEventRing(capacity int) *EventRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &EventRing{
		events:   make([]model.Event, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an event, discarding the oldest when the ring is full.
func (r *EventRing) Append(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) < r.capacity {
		r.events = append(r.events, ev)
		return
	}

	copy(r.events, r.events[1:])
	r.events[len(r.events)-1] = ev
}

// Snapshot returns a copy of the buffered events, oldest first.
func (r *EventRing) Snapshot() []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return nil
	}

	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Clear removes all buffered events.
func (r *EventRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = r.events[:0]
}

// Len returns the number of buffered events.
func (r *EventRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.events)
}

// Cap returns the ring capacity.
func (r *EventRing) Cap() int {
	return r.capacity
}
