package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/embedders"
	"github.com/finbot-ai/finbot/pkg/store"
)

// IngestCmd loads the corpus CSV, embeds every document, and writes the
// vector store. Re-running it replaces the collection in place.
type IngestCmd struct {
	CSV string `help:"Path to the corpus CSV (overrides config)." type:"path"`
}

func (c *IngestCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	csvPath := cfg.Store.CSVPath
	if c.CSV != "" {
		csvPath = c.CSV
	}

	rows, err := store.ReadCorpusCSV(csvPath)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	if len(rows) == 0 {
		// Zero usable rows is a valid, if degenerate, empty corpus.
		fmt.Printf("⚠️  Corpus %s contains no usable rows; ingesting an empty corpus.\n", csvPath)
	}

	embedder, err := embedders.NewFromConfig(&cfg.Embedder)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer embedder.Close()

	st, err := store.Open(cfg.Store, embedder)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Ingesting %d documents from %s...\n", len(rows), csvPath)
	start := time.Now()
	if err := st.Ingest(ctx, rows); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("✅ Ingested %d documents into %q in %s\n",
		st.Count(), cfg.Store.Collection, time.Since(start).Round(time.Millisecond))
	return nil
}
