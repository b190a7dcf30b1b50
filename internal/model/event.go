package model

// EventType discriminates broadcast events.
type EventType string

const (
	EventUserMessage EventType = "user_message"
	EventStatus      EventType = "status"
	EventText        EventType = "text"
	EventThinking    EventType = "thinking"
	EventToolUse     EventType = "tool_use"
	EventToolResult  EventType = "tool_result"
	EventError       EventType = "error"
)

// Status values carried by status events.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Event is one item of agent progress delivered to subscribers.
// It marshals to exactly one wire shape per type; unrelated fields are empty
// and omitted.
type Event struct {
	Type EventType `json:"type"`

	// user_message
	Content string `json:"content,omitempty"`

	// status
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	// text
	Text string `json:"text,omitempty"`

	// thinking
	Thinking string `json:"thinking,omitempty"`

	// tool_use
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`

	// tool_use and tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`

	// tool_result
	Output string `json:"output,omitempty"`
	Image  string `json:"image,omitempty"`

	// tool_result and error
	Error string `json:"error,omitempty"`

	// error
	Details string `json:"details,omitempty"`
}

// UserMessageEvent builds a user_message event.
func UserMessageEvent(content string) Event {
	return Event{Type: EventUserMessage, Content: content}
}

// StatusEvent builds a status event.
func StatusEvent(status, message string) Event {
	return Event{Type: EventStatus, Status: status, Message: message}
}

// TextEvent builds a text event.
func TextEvent(text string) Event {
	return Event{Type: EventText, Text: text}
}

// ThinkingEvent builds a thinking event.
func ThinkingEvent(thinking string) Event {
	return Event{Type: EventThinking, Thinking: thinking}
}

// ToolUseEvent builds a tool_use event.
func ToolUseEvent(name string, input map[string]any, toolUseID string) Event {
	return Event{Type: EventToolUse, ToolName: name, ToolInput: input, ToolUseID: toolUseID}
}

// ToolResultEvent builds a tool_result event.
func ToolResultEvent(toolUseID, output, errMsg, image string) Event {
	return Event{Type: EventToolResult, ToolUseID: toolUseID, Output: output, Error: errMsg, Image: image}
}

// ErrorEvent builds an error event.
func ErrorEvent(errMsg, details string) Event {
	return Event{Type: EventError, Error: errMsg, Details: details}
}
