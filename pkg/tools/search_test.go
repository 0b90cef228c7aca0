package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/embedders"
	"github.com/finbot-ai/finbot/pkg/retriever"
	"github.com/finbot-ai/finbot/pkg/store"
)

// wordEmbedder scores texts by overlap with a tiny fixed vocabulary.
type wordEmbedder struct {
	fail bool
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("%w: connection refused", embedders.ErrUnavailable)
	}
	lower := strings.ToLower(text)
	words := []string{"rate", "bank", "stocks"}
	vec := make([]float32, len(words)+1)
	for i, w := range words {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(words)] = 0.1
	return vec, nil
}

func (e *wordEmbedder) Dimension() int { return 4 }

func (e *wordEmbedder) GetModelName() string { return "word-test" }

func (e *wordEmbedder) Close() error { return nil }

func newSearchTool(t *testing.T, texts []string) (*SearchNewsTool, *wordEmbedder) {
	t.Helper()

	embedder := &wordEmbedder{}
	s, err := store.Open(config.StoreConfig{Collection: "test"}, embedder)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	rows := make([]store.Row, len(texts))
	for i, text := range texts {
		rows[i] = store.Row{
			ID:       fmt.Sprintf("doc-%d", i),
			Text:     text,
			Metadata: map[string]string{"source": "rbc.ru", "date": "2024-03-01"},
		}
	}
	if err := s.Ingest(context.Background(), rows); err != nil {
		t.Fatalf("Ingest() failed: %v", err)
	}

	return NewSearchNewsTool(retriever.New(s, embedder), 5), embedder
}

func TestSearchNewsReturnsFormattedResults(t *testing.T) {
	tool, _ := newSearchTool(t, []string{
		"The central bank held its key rate",
		"Tech stocks rallied on Friday",
	})

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query": "key rate decision",
		"top_k": 1,
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if !strings.Contains(result.Content, "[DOC 1]") {
		t.Errorf("Content missing document block: %q", result.Content)
	}
	if !strings.Contains(result.Content, "SOURCE: rbc.ru") || !strings.Contains(result.Content, "DATE: 2024-03-01") {
		t.Errorf("Content missing metadata: %q", result.Content)
	}
	if !strings.Contains(result.Content, "key rate") {
		t.Errorf("Content missing top document text: %q", result.Content)
	}
	if result.Metadata["results"] != 1 {
		t.Errorf("Metadata results = %v, want 1", result.Metadata["results"])
	}
}

func TestSearchNewsRequiresQuery(t *testing.T) {
	tool, _ := newSearchTool(t, []string{"some document"})

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "   "})
	if err != nil {
		t.Fatalf("missing query is a failed result, not an error: %v", err)
	}
	if result.Success {
		t.Fatal("expected Success=false")
	}
}

func TestSearchNewsEmptyCorpus(t *testing.T) {
	tool, _ := newSearchTool(t, nil)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "anything"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !result.Success {
		t.Fatal("empty corpus is a success with no matches")
	}
	if !strings.Contains(result.Content, "No matching documents") {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestSearchNewsEmbedderDown(t *testing.T) {
	tool, embedder := newSearchTool(t, []string{"some document"})
	embedder.fail = true

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "anything"})
	if err == nil {
		t.Fatal("expected the unavailability error to propagate alongside the result")
	}
	if result.Success {
		t.Fatal("expected Success=false")
	}
	if result.Content != "The news search is currently unavailable." {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestSearchNewsTopKCoercion(t *testing.T) {
	tool, _ := newSearchTool(t, []string{"bank one", "bank two", "bank three"})

	// JSON-decoded arguments arrive as float64.
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query": "bank",
		"top_k": float64(2),
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if result.Metadata["top_k"] != 2 {
		t.Errorf("top_k = %v, want 2", result.Metadata["top_k"])
	}
	if result.Metadata["results"] != 2 {
		t.Errorf("results = %v, want 2", result.Metadata["results"])
	}
}

func TestTruncateRunes(t *testing.T) {
	// Cyrillic runes are two bytes each; truncation must not split one.
	text := strings.Repeat("д", 100)
	got := truncateRunes(text, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("got %d runes, want 10", len([]rune(got)))
	}
	for _, r := range got {
		if r != 'д' {
			t.Errorf("rune corrupted: %q", got)
		}
	}

	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("short text modified: %q", got)
	}
}
