// Package hub owns live sessions: each registered session gets an inbound
// mailbox, a worker goroutine driving the agent runner, and a subscriber set
// its events fan out to.
package hub

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/computer-agent/backend/internal/agent"
	"github.com/computer-agent/backend/internal/buffer"
	"github.com/computer-agent/backend/internal/eventlog"
	"github.com/computer-agent/backend/internal/model"
)

const (
	// DefaultMaxTokens is the per-turn token budget passed to the runner.
	DefaultMaxTokens = 4096

	// DefaultBacklogSize is how many recent events are kept for catch-up.
	DefaultBacklogSize = 256
)

// Options configures a Hub.
type Options struct {
	// MaxTokens is the per-turn budget passed to the runner.
	MaxTokens int

	// BacklogSize is the per-session event backlog capacity.
	BacklogSize int

	// TranscriptDir, when set, enables a JSONL event transcript per session.
	TranscriptDir string
}

// Hub manages active sessions and their event distribution.
type Hub struct {
	runner        agent.Runner
	maxTokens     int
	backlogSize   int
	transcriptDir string

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is the runtime state of one registered session. The history is
// owned exclusively by the worker goroutine; the subscriber set is shared
// with the transport layer and guarded by mu.
type session struct {
	id           string
	model        string
	provider     string
	promptSuffix string

	history []model.Message
	mailbox *Mailbox
	cancel  context.CancelFunc
	done    chan struct{}

	mu      sync.Mutex
	subs    map[Subscriber]struct{}
	backlog *buffer.EventRing

	transcript *eventlog.Logger
}

// New creates a Hub that drives sessions with the given runner.
func New(runner agent.Runner, opts Options) *Hub {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.BacklogSize <= 0 {
		opts.BacklogSize = DefaultBacklogSize
	}

	return &Hub{
		runner:        runner,
		maxTokens:     opts.MaxTokens,
		backlogSize:   opts.BacklogSize,
		transcriptDir: opts.TranscriptDir,
		sessions:      make(map[string]*session),
	}
}

// Create registers a session and starts its worker.
// It fails with model.ErrSessionExists if the id is already registered.
func (h *Hub) Create(id, modelName, provider, promptSuffix string) error {
	s := &session{
		id:           id,
		model:        modelName,
		provider:     provider,
		promptSuffix: promptSuffix,
		mailbox:      NewMailbox(),
		done:         make(chan struct{}),
		subs:         make(map[Subscriber]struct{}),
		backlog:      buffer.NewEventRing(h.backlogSize),
	}

	if h.transcriptDir != "" {
		transcript, err := eventlog.New(filepath.Join(h.transcriptDir, id+".jsonl"))
		if err != nil {
			log.Printf("Transcript disabled for session %s: %v", id, err)
		} else {
			s.transcript = transcript
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	h.mu.Lock()
	if _, exists := h.sessions[id]; exists {
		h.mu.Unlock()
		cancel()
		if s.transcript != nil {
			s.transcript.Close()
		}
		return model.ErrSessionExists
	}
	h.sessions[id] = s
	h.mu.Unlock()

	go h.runWorker(ctx, s)

	log.Printf("Session created: %s", id)
	return nil
}

// Submit enqueues user text for processing. The enqueue is non-blocking and
// preserves submission order.
func (h *Hub) Submit(id, text string) error {
	s, ok := h.get(id)
	if !ok {
		return model.ErrSessionNotFound
	}

	s.mailbox.Put(text)
	return nil
}

// Subscribe attaches a subscriber to a session. Buffered backlog events are
// replayed first so a late subscriber catches up, then live events follow.
func (h *Hub) Subscribe(id string, sub Subscriber) error {
	s, ok := h.get(id)
	if !ok {
		return model.ErrSessionNotFound
	}

	// Replay and registration happen under the same lock broadcast snapshots
	// with, so no event is missed or duplicated across the boundary.
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.backlog.Snapshot() {
		if err := sub.Send(ev); err != nil {
			return err
		}
	}
	s.subs[sub] = struct{}{}
	return nil
}

// Unsubscribe detaches a subscriber. The subscriber itself is not closed;
// the transport layer owns its connection lifecycle.
func (h *Hub) Unsubscribe(id string, sub Subscriber) {
	s, ok := h.get(id)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// Remove cancels the session's worker and drops the mailbox and all
// subscribers. It is idempotent and a no-op for unknown ids. The worker
// stops at its next suspension point; an in-flight runner call is abandoned.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	s.cancel()

	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[Subscriber]struct{})
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}

	if s.transcript != nil {
		s.transcript.Close()
	}

	log.Printf("Session removed: %s", id)
}

// Exists reports whether a session id is registered.
func (h *Hub) Exists(id string) bool {
	_, ok := h.get(id)
	return ok
}

// ActiveSessions returns the number of registered sessions.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// SubscriberCount returns the number of subscribers attached to a session.
func (h *Hub) SubscriberCount(id string) int {
	s, ok := h.get(id)
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close removes all sessions. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Remove(id)
	}
}

func (h *Hub) get(id string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	return s, ok
}

// broadcast delivers one event to every current subscriber. Each subscriber
// gets exactly one send attempt; a failed attempt drops that subscriber from
// the live set so a dead sink cannot stall the pipeline.
func (s *session) broadcast(ev model.Event) {
	s.mu.Lock()
	s.backlog.Append(ev)
	subs := make([]Subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if s.transcript != nil {
		if err := s.transcript.Write(ev); err != nil {
			log.Printf("Transcript write failed for session %s: %v", s.id, err)
		}
	}

	for _, sub := range subs {
		if err := sub.Send(ev); err != nil {
			log.Printf("Dropping subscriber on session %s: %v", s.id, err)
			s.drop(sub)
		}
	}
}

// drop removes a subscriber that failed a send and closes it.
func (s *session) drop(sub Subscriber) {
	s.mu.Lock()
	_, ok := s.subs[sub]
	delete(s.subs, sub)
	s.mu.Unlock()

	if ok {
		sub.Close()
	}
}
