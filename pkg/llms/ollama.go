package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/ollama"
)

// OllamaProvider implements Provider against the Ollama chat API.
type OllamaProvider struct {
	config *config.LLMConfig
	client *ollama.Client
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaTool struct {
	Type     string             `json:"type"`
	Function ollamaToolFunction `json:"function"`
}

type ollamaToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type ollamaToolCall struct {
	Type     string                 `json:"type"`
	Function ollamaToolCallFunction `json:"function"`
}

type ollamaToolCallFunction struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// NewOllamaProvider creates a provider from config.
func NewOllamaProvider(cfg *config.LLMConfig) (*OllamaProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	baseURL := strings.TrimSuffix(cfg.Host, "/")

	return &OllamaProvider{
		config: cfg,
		client: ollama.NewClient(baseURL, time.Duration(cfg.Timeout)*time.Second, cfg.MaxRetries),
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, messages []Message) (string, int, error) {
	request := p.buildRequest(messages, nil, p.config.AnswerTemperature)

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		return "", 0, err
	}

	tokens := response.PromptEvalCount + response.EvalCount
	return response.Message.Content, tokens, nil
}

func (p *OllamaProvider) GenerateWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error) {
	request := p.buildRequest(messages, tools, p.config.ToolTemperature)

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		return "", nil, 0, err
	}

	var toolCalls []ToolCall
	for _, tc := range response.Message.ToolCalls {
		args := tc.Function.Arguments
		if args == nil {
			args = make(map[string]interface{})
		}
		toolCalls = append(toolCalls, ToolCall{
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	tokens := response.PromptEvalCount + response.EvalCount
	return response.Message.Content, toolCalls, tokens, nil
}

func (p *OllamaProvider) GetModelName() string {
	return p.config.Model
}

func (p *OllamaProvider) Close() error {
	return nil
}

func (p *OllamaProvider) buildRequest(messages []Message, tools []ToolDefinition, temperature float64) ollamaRequest {
	ollamaMessages := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		ollamaMessages = append(ollamaMessages, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	request := ollamaRequest{
		Model:    p.config.Model,
		Messages: ollamaMessages,
		Stream:   false,
		Options:  &ollamaOptions{Temperature: temperature},
	}

	if len(tools) > 0 {
		request.Tools = make([]ollamaTool, len(tools))
		for i, tool := range tools {
			request.Tools[i] = ollamaTool{
				Type: "function",
				Function: ollamaToolFunction{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			}
		}
	}

	return request
}

func (p *OllamaProvider) makeRequest(ctx context.Context, request ollamaRequest) (*ollamaResponse, error) {
	start := time.Now()

	resp, err := p.client.Post(ctx, "/api/chat", request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var response ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	if response.Error != "" {
		return nil, fmt.Errorf("%w: API error: %s", ErrUnavailable, response.Error)
	}

	slog.Debug("Ollama chat completed",
		"model", p.config.Model,
		"tokens", response.PromptEvalCount+response.EvalCount,
		"duration", time.Since(start))

	return &response, nil
}

// Ensure OllamaProvider implements Provider.
var _ Provider = (*OllamaProvider)(nil)
