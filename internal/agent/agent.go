// Package agent defines the computation that turns a session's message
// history into model output, and the reporting surface it emits progress on.
package agent

import (
	"context"

	"github.com/computer-agent/backend/internal/model"
)

// RunInput carries everything a Runner needs for one invocation.
type RunInput struct {
	Model              string
	Provider           string
	SystemPromptSuffix string
	History            []model.Message
	MaxTokens          int
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Output      string
	Error       string
	Base64Image string
}

// Reporter receives progress from a Runner as it happens. Calls are
// synchronous and made from the invoking goroutine, so the caller controls
// ordering and cancellation.
type Reporter interface {
	// Content reports one produced content block (text, thinking or tool_use).
	Content(block model.ContentBlock)

	// ToolResult reports the outcome of a tool invocation.
	ToolResult(result ToolResult, toolUseID string)
}

// Runner executes the agent computation. It may call the Reporter any number
// of times before returning. On success it returns the full updated history
// including the turns it produced; on error the caller keeps its own history.
type Runner interface {
	Run(ctx context.Context, in RunInput, rep Reporter) ([]model.Message, error)
}
