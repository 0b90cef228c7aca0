// Package llms provides the chat-completion client used for tool selection
// and answer generation. The service is reached over HTTP and treated as a
// black box; all non-determinism stays behind the Provider interface.
package llms

import (
	"context"
	"errors"
)

// ErrUnavailable reports a transient failure of the reasoning service.
// Callers surface it as a degraded-mode reply, never as a crash.
var ErrUnavailable = errors.New("reasoning service unavailable")

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition describes a callable tool in the provider's wire format.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCall is a structured function-call proposal returned by the model.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Provider generates chat completions.
type Provider interface {
	// Generate produces a plain-text completion.
	// Returns the text and the number of tokens used.
	Generate(ctx context.Context, messages []Message) (string, int, error)

	// GenerateWithTools produces a completion with the given tools offered
	// to the model. The model may return text, tool calls, or both.
	GenerateWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error)

	// GetModelName returns the configured model identifier.
	GetModelName() string

	// Close releases resources held by the provider.
	Close() error
}
