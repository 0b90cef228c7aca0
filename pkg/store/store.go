package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/philippgille/chromem-go"

	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/embedders"
)

const manifestFile = "manifest.json"

// Store is the document store, backed by chromem-go for embedded vector
// persistence: one embedding vector and its metadata per document, keyed by
// a stable document id.
//
// The in-memory document slice preserves ingestion order, which retrieval
// relies on for deterministic tie-breaking. It is read-only after Open or
// Ingest, so concurrent reads need no locking.
type Store struct {
	cfg      config.StoreConfig
	embedder embedders.Embedder
	db       *chromem.DB
	docs     []Document
}

// manifest records ingestion order; chromem itself has no notion of it.
type manifest struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
}

// Open opens (or creates) the store. With a persist path, previously
// ingested documents are reloaded from disk; otherwise the store starts
// empty in memory.
func Open(cfg config.StoreConfig, embedder embedders.Embedder) (*Store, error) {
	var db *chromem.DB
	var err error

	if cfg.PersistPath != "" {
		if err := os.MkdirAll(cfg.PersistPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create persist directory: %w", err)
		}
		db, err = chromem.NewPersistentDB(cfg.PersistPath, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector database: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	s := &Store{
		cfg:      cfg,
		embedder: embedder,
		db:       db,
	}

	if err := s.reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// reload rebuilds the ordered document slice from the persisted collection
// using the manifest. A missing manifest means nothing was ingested yet.
func (s *Store) reload() error {
	if s.cfg.PersistPath == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.PersistPath, manifestFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse store manifest: %w", err)
	}

	col := s.db.GetCollection(m.Collection, noEmbeddingFunc)
	if col == nil {
		slog.Warn("Store manifest references missing collection", "collection", m.Collection)
		return nil
	}

	ctx := context.Background()
	docs := make([]Document, 0, len(m.IDs))
	for _, id := range m.IDs {
		doc, err := col.GetByID(ctx, id)
		if err != nil {
			slog.Warn("Manifest document missing from collection", "id", id, "error", err)
			continue
		}
		docs = append(docs, Document{
			ID:        doc.ID,
			Text:      doc.Content,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
		})
	}

	s.docs = docs
	slog.Info("Loaded document store", "collection", m.Collection, "documents", len(docs))
	return nil
}

// Ingest embeds and persists the given rows, replacing any previous corpus.
// Re-running against identical input yields the same ids and embeddings:
// row ids are deterministic and the collection is dropped and recreated, so
// nothing duplicates.
func (s *Store) Ingest(ctx context.Context, rows []Row) error {
	start := time.Now()

	docs := make([]Document, 0, len(rows))
	chromemDocs := make([]chromem.Document, 0, len(rows))
	ids := make([]string, 0, len(rows))

	for _, row := range rows {
		embedding, err := s.embedder.Embed(ctx, row.Text)
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", row.ID, err)
		}

		docs = append(docs, Document{
			ID:        row.ID,
			Text:      row.Text,
			Embedding: embedding,
			Metadata:  row.Metadata,
		})
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:        row.ID,
			Content:   row.Text,
			Metadata:  row.Metadata,
			Embedding: embedding,
		})
		ids = append(ids, row.ID)
	}

	// Drop and recreate so re-ingestion never duplicates.
	if err := s.db.DeleteCollection(s.cfg.Collection); err != nil {
		return fmt.Errorf("failed to reset collection %q: %w", s.cfg.Collection, err)
	}
	col, err := s.db.CreateCollection(s.cfg.Collection, nil, noEmbeddingFunc)
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.cfg.Collection, err)
	}

	if len(chromemDocs) > 0 {
		if err := col.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}
	}

	if err := s.writeManifest(ids); err != nil {
		return err
	}

	s.docs = docs
	slog.Info("Ingested corpus",
		"collection", s.cfg.Collection,
		"documents", len(docs),
		"duration", time.Since(start))
	return nil
}

func (s *Store) writeManifest(ids []string) error {
	if s.cfg.PersistPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(manifest{Collection: s.cfg.Collection, IDs: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store manifest: %w", err)
	}

	path := filepath.Join(s.cfg.PersistPath, manifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store manifest: %w", err)
	}
	return nil
}

// All returns the full corpus in ingestion order. Callers must not mutate
// the returned documents.
func (s *Store) All() []Document {
	return s.docs
}

// Count returns the number of ingested documents.
func (s *Store) Count() int {
	return len(s.docs)
}

// Close releases the store.
func (s *Store) Close() error {
	return nil
}

// noEmbeddingFunc guards against accidental text-based queries; all vectors
// are precomputed by the embedder.
func noEmbeddingFunc(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding function called but vectors are precomputed")
}
