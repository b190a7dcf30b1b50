package agent

import (
	"context"
	"fmt"

	"github.com/computer-agent/backend/internal/model"
)

// ScriptedRunner is a deterministic Runner for local development and tests.
// It echoes the latest user turn as a text block, so the full event pipeline
// can be exercised without an API key.
type ScriptedRunner struct {
	// Prefix is prepended to the echoed text. Defaults to "(scripted) ".
	Prefix string
}

// NewScriptedRunner creates a scripted runner with the default prefix.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{Prefix: "(scripted) "}
}

// Run reports a single text block echoing the last user message and returns
// the history extended with that assistant turn.
func (r *ScriptedRunner) Run(ctx context.Context, in RunInput, rep Reporter) ([]model.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := lastUserText(in.History)
	if last == "" {
		return nil, fmt.Errorf("no user message in history")
	}

	block := model.TextBlock(r.Prefix + last)
	rep.Content(block)

	updated := make([]model.Message, 0, len(in.History)+1)
	updated = append(updated, in.History...)
	updated = append(updated, model.Message{
		Role:    model.RoleAssistant,
		Content: []model.ContentBlock{block},
	})
	return updated, nil
}

func lastUserText(history []model.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != model.RoleUser {
			continue
		}
		for _, b := range history[i].Content {
			if b.Type == model.BlockText {
				return b.Text
			}
		}
	}
	return ""
}
