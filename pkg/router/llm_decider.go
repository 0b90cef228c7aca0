package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/finbot-ai/finbot/pkg/llms"
	"github.com/finbot-ai/finbot/pkg/tools"
)

// LLMDecider asks an LLM provider for a tool proposal using native
// function calling. Models that ignore the tools channel and answer with a
// bare JSON object in the content are handled by a parse fallback.
type LLMDecider struct {
	provider     llms.Provider
	systemPrompt string
}

func NewLLMDecider(provider llms.Provider, systemPrompt string) *LLMDecider {
	return &LLMDecider{
		provider:     provider,
		systemPrompt: systemPrompt,
	}
}

// contentProposal is the fallback wire shape some models emit in plain
// content instead of a native tool call.
type contentProposal struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

func (d *LLMDecider) Decide(ctx context.Context, utterance string, schemas []tools.ToolInfo) (*Proposal, error) {
	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: d.systemPrompt},
		{Role: llms.RoleUser, Content: utterance},
	}

	text, toolCalls, _, err := d.provider.GenerateWithTools(ctx, messages, toDefinitions(schemas))
	if err != nil {
		return nil, err
	}

	if len(toolCalls) > 0 {
		call := toolCalls[0]
		if len(toolCalls) > 1 {
			slog.Debug("Oracle proposed multiple tool calls, using first", "count", len(toolCalls))
		}
		return &Proposal{Tool: call.Name, Args: call.Arguments}, nil
	}

	if proposal := parseContentProposal(text); proposal != nil {
		return proposal, nil
	}

	// No call and no parsable proposal: the oracle declined.
	return nil, nil
}

func parseContentProposal(text string) *Proposal {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil
	}

	var cp contentProposal
	if err := json.Unmarshal([]byte(text), &cp); err != nil || cp.Tool == "" {
		return nil
	}
	return &Proposal{Tool: cp.Tool, Args: cp.Args}
}

// toDefinitions converts registry schemas into the provider's tool
// definition format, building a JSON Schema object per tool.
func toDefinitions(schemas []tools.ToolInfo) []llms.ToolDefinition {
	defs := make([]llms.ToolDefinition, 0, len(schemas))
	for _, info := range schemas {
		properties := make(map[string]interface{}, len(info.Parameters))
		var required []string
		for _, p := range info.Parameters {
			properties[p.Name] = map[string]interface{}{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		parameters := map[string]interface{}{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			parameters["required"] = required
		}

		defs = append(defs, llms.ToolDefinition{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  parameters,
		})
	}
	return defs
}
