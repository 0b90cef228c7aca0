package llms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbot-ai/finbot/pkg/config"
)

func testLLMConfig(host string) *config.LLMConfig {
	return &config.LLMConfig{
		Host:              host,
		Model:             "test-model",
		ToolTemperature:   0.1,
		AnswerTemperature: 0.2,
		Timeout:           5,
		MaxRetries:        0,
	}
}

func TestGenerate(t *testing.T) {
	var gotReq map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model":             "test-model",
			"message":           map[string]string{"role": "assistant", "content": "ставка сохранена"},
			"done":              true,
			"prompt_eval_count": 12,
			"eval_count":        8,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(testLLMConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOllamaProvider() failed: %v", err)
	}

	text, tokens, err := provider.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "policy"},
		{Role: RoleUser, Content: "вопрос"},
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if text != "ставка сохранена" {
		t.Errorf("text = %q", text)
	}
	if tokens != 20 {
		t.Errorf("tokens = %d, want 20", tokens)
	}

	if gotReq["model"] != "test-model" {
		t.Errorf("request model = %v", gotReq["model"])
	}
	if gotReq["stream"] != false {
		t.Error("requests must disable streaming")
	}
	opts, _ := gotReq["options"].(map[string]interface{})
	if opts["temperature"] != 0.2 {
		t.Errorf("answer temperature = %v, want 0.2", opts["temperature"])
	}
}

func TestGenerateWithToolsParsesToolCalls(t *testing.T) {
	var gotReq map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]interface{}{
				"role":    "assistant",
				"content": "",
				"tool_calls": []map[string]interface{}{
					{
						"type": "function",
						"function": map[string]interface{}{
							"name":      "search_financial_news",
							"arguments": map[string]interface{}{"query": "ключевая ставка", "top_k": 3},
						},
					},
				},
			},
			"done": true,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(testLLMConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOllamaProvider() failed: %v", err)
	}

	_, calls, _, err := provider.GenerateWithTools(context.Background(),
		[]Message{{Role: RoleUser, Content: "новости про ставку"}},
		[]ToolDefinition{{
			Name:        "search_financial_news",
			Description: "search",
			Parameters:  map[string]interface{}{"type": "object"},
		}},
	)
	if err != nil {
		t.Fatalf("GenerateWithTools() failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(calls))
	}
	if calls[0].Name != "search_financial_news" {
		t.Errorf("tool = %q", calls[0].Name)
	}
	if calls[0].Arguments["query"] != "ключевая ставка" {
		t.Errorf("arguments = %v", calls[0].Arguments)
	}

	reqTools, _ := gotReq["tools"].([]interface{})
	if len(reqTools) != 1 {
		t.Fatalf("request carried %d tools, want 1", len(reqTools))
	}
	opts, _ := gotReq["options"].(map[string]interface{})
	if opts["temperature"] != 0.1 {
		t.Errorf("tool temperature = %v, want 0.1", opts["temperature"])
	}
}

func TestGenerateWrapsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(testLLMConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOllamaProvider() failed: %v", err)
	}

	_, _, err = provider.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error %v does not wrap ErrUnavailable", err)
	}
}

func TestGenerateUnreachableHost(t *testing.T) {
	// Port 1 on loopback refuses connections immediately.
	provider, err := NewOllamaProvider(&config.LLMConfig{
		Host:       "http://127.0.0.1:1",
		Model:      "test-model",
		Timeout:    1,
		MaxRetries: 0,
	})
	if err != nil {
		t.Fatalf("NewOllamaProvider() failed: %v", err)
	}

	_, _, err = provider.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error %v does not wrap ErrUnavailable", err)
	}
}

func TestGenerateAPIErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "model is loading"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(testLLMConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOllamaProvider() failed: %v", err)
	}

	_, _, err = provider.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error %v does not wrap ErrUnavailable", err)
	}
}
