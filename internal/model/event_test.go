package model

import (
	"encoding/json"
	"testing"
)

// Each event type must marshal to its own wire shape with no stray fields.
func TestEventWireShapes(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  map[string]interface{}
	}{
		{
			name:  "user message",
			event: UserMessageEvent("open a browser"),
			want:  map[string]interface{}{"type": "user_message", "content": "open a browser"},
		},
		{
			name:  "status",
			event: StatusEvent(StatusProcessing, "Processing your request..."),
			want:  map[string]interface{}{"type": "status", "status": "processing", "message": "Processing your request..."},
		},
		{
			name:  "text",
			event: TextEvent("done"),
			want:  map[string]interface{}{"type": "text", "text": "done"},
		},
		{
			name:  "thinking",
			event: ThinkingEvent("let me check"),
			want:  map[string]interface{}{"type": "thinking", "thinking": "let me check"},
		},
		{
			name:  "tool use",
			event: ToolUseEvent("computer", map[string]any{"action": "screenshot"}, "tool-1"),
			want: map[string]interface{}{
				"type":        "tool_use",
				"tool_name":   "computer",
				"tool_input":  map[string]interface{}{"action": "screenshot"},
				"tool_use_id": "tool-1",
			},
		},
		{
			name:  "tool result",
			event: ToolResultEvent("tool-1", "ok", "", "aW1n"),
			want:  map[string]interface{}{"type": "tool_result", "tool_use_id": "tool-1", "output": "ok", "image": "aW1n"},
		},
		{
			name:  "error",
			event: ErrorEvent("boom", "*errors.errorString"),
			want:  map[string]interface{}{"type": "error", "error": "boom", "details": "*errors.errorString"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var got map[string]interface{}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if len(got) != len(tc.want) {
				t.Errorf("Expected %d fields on the wire, got %d: %s", len(tc.want), len(got), data)
			}
			for key, want := range tc.want {
				gotVal, ok := got[key]
				if !ok {
					t.Errorf("Missing field %q in %s", key, data)
					continue
				}
				if key == "tool_input" {
					continue // compared structurally below
				}
				if gotVal != want {
					t.Errorf("Field %q: expected %v, got %v", key, want, gotVal)
				}
			}

			if wantInput, ok := tc.want["tool_input"].(map[string]interface{}); ok {
				gotInput, _ := got["tool_input"].(map[string]interface{})
				for k, v := range wantInput {
					if gotInput[k] != v {
						t.Errorf("tool_input[%q]: expected %v, got %v", k, v, gotInput[k])
					}
				}
			}
		})
	}
}

func TestMessageContentJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		msg := &Message{
			Content: []ContentBlock{
				TextBlock("hello"),
				{Type: BlockToolResult, ToolUseID: "tool-1", Content: "ok", IsError: false},
			},
		}

		data, err := msg.ContentToJSON()
		if err != nil {
			t.Fatalf("ContentToJSON failed: %v", err)
		}

		restored := &Message{}
		if err := restored.ContentFromJSON(data); err != nil {
			t.Fatalf("ContentFromJSON failed: %v", err)
		}

		if len(restored.Content) != 2 {
			t.Fatalf("Expected 2 blocks, got %d", len(restored.Content))
		}
		if restored.Content[0].Text != "hello" {
			t.Errorf("Text block corrupted: %+v", restored.Content[0])
		}
		if restored.Content[1].ToolUseID != "tool-1" {
			t.Errorf("Tool result block corrupted: %+v", restored.Content[1])
		}
	})

	t.Run("nil content serializes as empty array", func(t *testing.T) {
		msg := &Message{}
		data, err := msg.ContentToJSON()
		if err != nil {
			t.Fatalf("ContentToJSON failed: %v", err)
		}
		if data != "[]" {
			t.Errorf("Expected '[]', got %q", data)
		}
	})
}

func TestCreateSessionRequestValidate(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		req := &CreateSessionRequest{}
		if err := req.Validate(); err != ErrModelRequired {
			t.Errorf("Expected ErrModelRequired, got %v", err)
		}
	})

	t.Run("provider defaults to anthropic", func(t *testing.T) {
		req := &CreateSessionRequest{Model: "claude-sonnet-4-20250514"}
		if err := req.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if req.Provider != "anthropic" {
			t.Errorf("Expected default provider 'anthropic', got %q", req.Provider)
		}
	})
}
