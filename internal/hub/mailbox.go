package hub

import (
	"context"
	"sync"
)

// Mailbox is an unbounded FIFO queue with a single consumer. Put never
// blocks; Get blocks until an item arrives or the context is cancelled.
type Mailbox struct {
	mu     sync.Mutex
	items  []string
	signal chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		signal: make(chan struct{}, 1),
	}
}

// Put enqueues an item. It never blocks.
func (m *Mailbox) Put(item string) {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Get dequeues the oldest item, waiting for one if the mailbox is empty.
// It returns the context error if the context is cancelled first.
func (m *Mailbox) Get(ctx context.Context) (string, error) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			item := m.items[0]
			m.items = m.items[1:]
			m.mu.Unlock()
			return item, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-m.signal:
		}
	}
}

// Len returns the number of queued items.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
