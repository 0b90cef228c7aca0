package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Corpus CSV columns. The text columns are joined to form the document text;
// the metadata columns are carried through to search results.
var (
	csvTextColumns     = []string{"reasoning", "article_text", "sphere"}
	csvMetadataColumns = []string{"source", "date", "answer"}
)

// Namespace for deterministic document IDs derived from row position.
// Rows without an id column get the same ID on every ingestion run.
var docIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// ReadCorpusCSV reads a corpus file, one document per row. Malformed rows
// (no text in any text column) are skipped with a warning, never aborting
// the whole load. A file that yields zero rows is a valid empty corpus.
func ReadCorpusCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows []Row
	skipped := 0
	for ordinal := 0; ; ordinal++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Skipping unreadable corpus row", "row", ordinal, "error", err)
			skipped++
			continue
		}

		row, ok := parseRow(record, columns, ordinal)
		if !ok {
			slog.Warn("Skipping corpus row with no text", "row", ordinal)
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		slog.Warn("Corpus load finished with skipped rows", "loaded", len(rows), "skipped", skipped)
	}

	return rows, nil
}

func parseRow(record []string, columns map[string]int, ordinal int) (Row, bool) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var parts []string
	for _, col := range csvTextColumns {
		if v := field(col); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return Row{}, false
	}

	metadata := make(map[string]string, len(csvMetadataColumns))
	for _, col := range csvMetadataColumns {
		metadata[col] = field(col)
	}

	id := field("id")
	if id == "" {
		id = uuid.NewSHA1(docIDNamespace, []byte(fmt.Sprintf("row:%d", ordinal))).String()
	}

	return Row{
		ID:       id,
		Text:     strings.Join(parts, "\n\n"),
		Metadata: metadata,
	}, true
}
