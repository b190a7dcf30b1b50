package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/computer-agent/backend/internal/model"
)

// AnthropicRunner runs one model turn against the Anthropic Messages API.
// Tool use blocks are reported to the caller but not executed locally; tool
// execution belongs to the environment the desktop agent runs in.
type AnthropicRunner struct {
	client anthropic.Client
}

// NewAnthropicRunner creates a runner authenticated with the given API key.
func NewAnthropicRunner(apiKey string) *AnthropicRunner {
	return &AnthropicRunner{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Run sends the history to the API, reports every returned content block in
// order, and returns the history extended with the assistant turn.
func (r *AnthropicRunner) Run(ctx context.Context, in RunInput, rep Reporter) ([]model.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(in.Model),
		MaxTokens: int64(in.MaxTokens),
		Messages:  toMessageParams(in.History),
	}
	if in.SystemPromptSuffix != "" {
		params.System = []anthropic.TextBlockParam{{Text: in.SystemPromptSuffix}}
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	assistant := model.Message{Role: model.RoleAssistant}
	for _, block := range resp.Content {
		var cb model.ContentBlock
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			cb = model.ContentBlock{Type: model.BlockText, Text: v.Text}
		case anthropic.ThinkingBlock:
			cb = model.ContentBlock{Type: model.BlockThinking, Thinking: v.Thinking}
		case anthropic.ToolUseBlock:
			var input map[string]any
			if err := json.Unmarshal([]byte(v.JSON.Input.Raw()), &input); err != nil {
				input = nil
			}
			cb = model.ContentBlock{Type: model.BlockToolUse, ID: v.ID, Name: v.Name, Input: input}
		default:
			continue
		}

		rep.Content(cb)
		assistant.Content = append(assistant.Content, cb)
	}

	updated := make([]model.Message, 0, len(in.History)+1)
	updated = append(updated, in.History...)
	updated = append(updated, assistant)
	return updated, nil
}

// toMessageParams converts stored history into API message params. Only text
// blocks are forwarded; thinking and tool blocks are artifacts of previous
// turns that the API reproduces on its own.
func toMessageParams(history []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		var blocks []anthropic.ContentBlockParamUnion
		for _, b := range m.Content {
			if b.Type == model.BlockText && b.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}

		if m.Role == model.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}
