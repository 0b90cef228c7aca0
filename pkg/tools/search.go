package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finbot-ai/finbot/pkg/retriever"
)

// maxSnippetLen bounds how much of each document reaches the model context.
const maxSnippetLen = 1200

// SearchNewsTool retrieves relevant documents from the financial-news
// corpus. Empty results are a success, not a failure; the embedding service
// being down is reported as an unavailable result.
type SearchNewsTool struct {
	retriever   *retriever.Retriever
	defaultTopK int
}

func NewSearchNewsTool(r *retriever.Retriever, defaultTopK int) *SearchNewsTool {
	return &SearchNewsTool{
		retriever:   r,
		defaultTopK: defaultTopK,
	}
}

func (t *SearchNewsTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        NameSearchNews,
		Description: "Search the Russian financial news corpus. Use for questions about finance, economics, companies, and markets.",
		Parameters: []ToolParameter{
			{
				Name:        "query",
				Type:        "string",
				Description: "Search query for retrieving relevant financial news",
				Required:    true,
			},
			{
				Name:        "top_k",
				Type:        "integer",
				Description: "Number of results to return",
				Required:    false,
			},
		},
	}
}

func (t *SearchNewsTool) GetName() string {
	return NameSearchNews
}

func (t *SearchNewsTool) GetDescription() string {
	return "Search the financial news corpus"
}

func (t *SearchNewsTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	start := time.Now()

	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return ToolResult{
			Success:       false,
			Content:       "A search query is required.",
			Error:         "query argument is required",
			ToolName:      NameSearchNews,
			ExecutionTime: time.Since(start),
		}, nil
	}

	k := t.defaultTopK
	if raw, ok := args["top_k"]; ok {
		if parsed, ok := intArg(raw); ok && parsed >= 1 {
			k = parsed
		}
	}

	results, err := t.retriever.Search(ctx, query, k)
	if err != nil {
		return ToolResult{
			Success:       false,
			Content:       "The news search is currently unavailable.",
			Error:         err.Error(),
			ToolName:      NameSearchNews,
			ExecutionTime: time.Since(start),
		}, err
	}

	return ToolResult{
		Success:       true,
		Content:       formatResults(results),
		Output:        results,
		ToolName:      NameSearchNews,
		ExecutionTime: time.Since(start),
		Metadata: map[string]interface{}{
			"query":   query,
			"top_k":   k,
			"results": len(results),
		},
	}, nil
}

// formatResults renders ranked documents as context blocks for grounding
// the final answer.
func formatResults(results []retriever.RankedResult) string {
	if len(results) == 0 {
		return "No matching documents were found in the corpus."
	}

	var b strings.Builder
	for i, r := range results {
		text := truncateRunes(r.Document.Text, maxSnippetLen)
		fmt.Fprintf(&b, "[DOC %d]\nSOURCE: %s\nDATE: %s\nTEXT: %s\n",
			i+1, r.Document.Metadata["source"], r.Document.Metadata["date"], text)
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// truncateRunes cuts text to at most n runes, never splitting a rune.
func truncateRunes(text string, n int) string {
	if len(text) <= n {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func intArg(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		var parsed int
		if _, err := fmt.Sscanf(v, "%d", &parsed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// Interface checks for the closed tool set.
var (
	_ Tool = (*SystemStatsTool)(nil)
	_ Tool = (*MoscowTimeTool)(nil)
	_ Tool = (*SearchNewsTool)(nil)
)
