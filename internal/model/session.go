package model

import (
	"encoding/json"
	"time"
)

// Session represents a chat session with one agent configuration.
type Session struct {
	ID                 string    `json:"id"`
	Model              string    `json:"model"`
	Provider           string    `json:"provider"`
	SystemPromptSuffix string    `json:"systemPromptSuffix,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Block types for message content.
const (
	BlockText       = "text"
	BlockThinking   = "thinking"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is one typed element of a message's content.
// Only the fields matching Type are set.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// thinking
	Thinking string `json:"thinking,omitempty"`

	// tool_use
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// Message is one turn of a session's history.
type Message struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Role      Role           `json:"role"`
	Content   []ContentBlock `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ContentToJSON serializes the content blocks for storage.
func (m *Message) ContentToJSON() (string, error) {
	if m.Content == nil {
		return "[]", nil
	}
	data, err := json.Marshal(m.Content)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ContentFromJSON parses stored content blocks.
func (m *Message) ContentFromJSON(data string) error {
	if data == "" {
		m.Content = nil
		return nil
	}
	return json.Unmarshal([]byte(data), &m.Content)
}

// CreateSessionRequest represents a request to create a new session.
type CreateSessionRequest struct {
	Model              string `json:"model" binding:"required"`
	Provider           string `json:"provider"`
	SystemPromptSuffix string `json:"system_prompt_suffix"`
}

// Validate validates the create session request and fills defaults.
func (r *CreateSessionRequest) Validate() error {
	if r.Model == "" {
		return ErrModelRequired
	}
	if r.Provider == "" {
		r.Provider = "anthropic"
	}
	return nil
}
