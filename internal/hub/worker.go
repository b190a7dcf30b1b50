package hub

import (
	"context"
	"fmt"
	"log"

	"github.com/computer-agent/backend/internal/agent"
	"github.com/computer-agent/backend/internal/model"
)

// runWorker is the per-session processing loop. It is the only goroutine
// that touches the session's history, so dispatches for one session are
// strictly sequential in submission order.
func (h *Hub) runWorker(ctx context.Context, s *session) {
	defer close(s.done)

	log.Printf("Starting message processor for session: %s", s.id)

	for {
		text, err := s.mailbox.Get(ctx)
		if err != nil {
			log.Printf("Message processor stopped for session: %s", s.id)
			return
		}

		h.dispatch(ctx, s, text)
	}
}

// dispatch processes one user message through the runner.
func (h *Hub) dispatch(ctx context.Context, s *session, text string) {
	s.history = append(s.history, model.Message{
		Role:    model.RoleUser,
		Content: []model.ContentBlock{model.TextBlock(text)},
	})

	s.broadcast(model.UserMessageEvent(text))
	s.broadcast(model.StatusEvent(model.StatusProcessing, "Processing your request..."))

	updated, err := h.runner.Run(ctx, agent.RunInput{
		Model:              s.model,
		Provider:           s.provider,
		SystemPromptSuffix: s.promptSuffix,
		History:            s.history,
		MaxTokens:          h.maxTokens,
	}, &sessionReporter{s: s})
	if err != nil {
		// The appended user turn stays in history so the next dispatch
		// carries it; matches the upstream behavior this replaces.
		log.Printf("Runner failed for session %s: %v", s.id, err)
		s.broadcast(model.ErrorEvent(err.Error(), fmt.Sprintf("%T", err)))
		return
	}

	s.history = updated
	s.broadcast(model.StatusEvent(model.StatusCompleted, "Request completed"))
}

// sessionReporter translates runner progress into broadcast events. Calls
// arrive on the worker goroutine, so event order equals emission order.
type sessionReporter struct {
	s *session
}

func (r *sessionReporter) Content(block model.ContentBlock) {
	switch block.Type {
	case model.BlockText:
		r.s.broadcast(model.TextEvent(block.Text))
	case model.BlockThinking:
		r.s.broadcast(model.ThinkingEvent(block.Thinking))
	case model.BlockToolUse:
		r.s.broadcast(model.ToolUseEvent(block.Name, block.Input, block.ID))
	}
}

func (r *sessionReporter) ToolResult(result agent.ToolResult, toolUseID string) {
	r.s.broadcast(model.ToolResultEvent(toolUseID, result.Output, result.Error, result.Base64Image))
}
