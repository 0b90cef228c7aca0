// Package tools defines the agent's fixed capability set: schema-typed
// tools registered once at startup and executed with validated arguments.
package tools

import (
	"context"
	"time"
)

// Tool names. The set is closed; the orchestrator dispatches over it
// exhaustively.
const (
	NameSystemStats = "get_system_stats"
	NameMoscowTime  = "get_moscow_time"
	NameSearchNews  = "search_financial_news"
)

// ToolInfo describes a tool and its parameter schema. Fixed at process
// start; immutable.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
}

// ToolParameter describes one schema parameter.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolResult is the outcome of a tool execution. A failed execution is a
// result, not an error: Success=false with Error set. Tool output is
// untrusted content and always passes through the output guard.
type ToolResult struct {
	Success       bool                   `json:"success"`
	Content       string                 `json:"content,omitempty"`
	Output        interface{}            `json:"output,omitempty"`
	Error         string                 `json:"error,omitempty"`
	ToolName      string                 `json:"tool_name"`
	ExecutionTime time.Duration          `json:"execution_time,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Tool is a named capability executable with validated arguments.
type Tool interface {
	GetInfo() ToolInfo

	Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error)

	GetName() string

	GetDescription() string
}
