package hub

import (
	"sync"

	"github.com/computer-agent/backend/internal/model"
)

// Subscriber receives the events broadcast on one session.
//
// Send must not block: a push-style subscriber writes into a buffered channel
// drained by its own connection pump, a pull-style subscriber enqueues for a
// streaming consumer. A Send error means the subscriber is gone or has fallen
// too far behind; the hub drops it after exactly one failed attempt.
type Subscriber interface {
	Send(ev model.Event) error
	Close()
}

// QueueSubscriber is a pull-style subscriber backed by a bounded delivery
// queue. A separate consumer drains Events and serializes them to the wire
// (the SSE handler does this).
//
// The queue is bounded rather than unbounded: when it fills, Send fails and
// the hub drops the subscriber, the same way it treats a dead push sink.
type QueueSubscriber struct {
	mu     sync.Mutex
	ch     chan model.Event
	closed bool
}

// DefaultQueueSize is the delivery queue bound for pull subscribers.
const DefaultQueueSize = 1024

// NewQueueSubscriber creates a pull subscriber with the given queue bound.
// A size of 0 or less uses DefaultQueueSize.
func NewQueueSubscriber(size int) *QueueSubscriber {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &QueueSubscriber{
		ch: make(chan model.Event, size),
	}
}

// Send enqueues an event for the consumer. It fails if the subscriber is
// closed or its queue is full.
func (q *QueueSubscriber) Send(ev model.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return model.ErrSubscriberClosed
	}

	select {
	case q.ch <- ev:
		return nil
	default:
		return model.ErrSubscriberFull
	}
}

// Close closes the delivery queue. The consumer sees the channel close after
// draining any queued events. Safe to call more than once.
func (q *QueueSubscriber) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Events returns the channel the consumer drains.
func (q *QueueSubscriber) Events() <-chan model.Event {
	return q.ch
}
