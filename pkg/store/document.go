// Package store holds the ingested corpus: one embedding vector per corpus
// row plus its source text and metadata. Documents are immutable after
// ingestion and may be shared across concurrent readers without locking.
package store

// Document is one corpus row. One row = one document; rows are never split.
type Document struct {
	// ID is a stable, opaque identifier assigned at ingestion.
	ID string

	// Text is the embedded source text.
	Text string

	// Embedding is the precomputed fixed-length vector for Text.
	Embedding []float32

	// Metadata carries the row's auxiliary columns (source, date, ...).
	Metadata map[string]string
}

// Row is a raw corpus row produced by the CSV reader, before embedding.
type Row struct {
	ID       string
	Text     string
	Metadata map[string]string
}
