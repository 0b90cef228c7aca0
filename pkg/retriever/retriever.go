// Package retriever implements top-K semantic search over the document store.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/finbot-ai/finbot/pkg/embedders"
	"github.com/finbot-ai/finbot/pkg/store"
)

// scoreTolerance below which two scores count as a tie. Ties keep ingestion
// order, so repeated searches over the same corpus return identical results.
const scoreTolerance = 1e-6

// RankedResult is one scored document. Scores are raw cosine similarity in
// [-1, 1], non-increasing by rank.
type RankedResult struct {
	Document store.Document
	Score    float64
	Rank     int
}

// Retriever embeds a query and scores it against the stored corpus vectors.
type Retriever struct {
	store    *store.Store
	embedder embedders.Embedder
}

// New creates a Retriever over the given store and embedder.
func New(s *store.Store, embedder embedders.Embedder) *Retriever {
	return &Retriever{
		store:    s,
		embedder: embedder,
	}
}

// Search returns the k highest-scoring documents for the query, k >= 1.
// An empty corpus yields an empty result, not an error. A corpus smaller
// than k yields the whole corpus. The only fallible step is the embedding
// call; its failure wraps embedders.ErrUnavailable.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]RankedResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	docs := r.store.All()
	if len(docs) == 0 {
		return []RankedResult{}, nil
	}

	start := time.Now()

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]RankedResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, RankedResult{
			Document: doc,
			Score:    cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	// Stable sort keeps ingestion order for scores within tolerance.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score+scoreTolerance
	})

	if k < len(results) {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i
	}

	slog.Debug("Retrieval completed",
		"query_length", len(query),
		"k", k,
		"results", len(results),
		"duration", time.Since(start))

	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
