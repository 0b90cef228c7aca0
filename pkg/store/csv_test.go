package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestReadCorpusCSV(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"id,reasoning,article_text,sphere,source,date,answer",
		`doc-1,Rates held,"ЦБ сохранил ключевую ставку",banking,rbc.ru,2024-03-01,neutral`,
		`,,"Акции выросли на фоне отчетности",,vedomosti.ru,2024-03-02,positive`,
	}, "\n") + "\n")

	rows, err := ReadCorpusCSV(path)
	if err != nil {
		t.Fatalf("ReadCorpusCSV() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.ID != "doc-1" {
		t.Errorf("ID = %q, want doc-1", first.ID)
	}
	if !strings.Contains(first.Text, "Rates held") || !strings.Contains(first.Text, "ключевую ставку") {
		t.Errorf("text columns not joined: %q", first.Text)
	}
	if first.Metadata["source"] != "rbc.ru" || first.Metadata["date"] != "2024-03-01" || first.Metadata["answer"] != "neutral" {
		t.Errorf("metadata = %v", first.Metadata)
	}

	second := rows[1]
	if second.ID == "" {
		t.Error("row without id column should get a generated id")
	}
	if second.Text != "Акции выросли на фоне отчетности" {
		t.Errorf("Text = %q", second.Text)
	}
}

func TestReadCorpusCSVGeneratedIDsAreStable(t *testing.T) {
	content := strings.Join([]string{
		"reasoning,source,date,answer",
		"first document,a,2024-01-01,x",
		"second document,b,2024-01-02,y",
	}, "\n") + "\n"

	pathA := writeTempCSV(t, content)
	pathB := writeTempCSV(t, content)

	rowsA, err := ReadCorpusCSV(pathA)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	rowsB, err := ReadCorpusCSV(pathB)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}

	for i := range rowsA {
		if rowsA[i].ID != rowsB[i].ID {
			t.Errorf("row %d: id %q != %q, ids must be deterministic", i, rowsA[i].ID, rowsB[i].ID)
		}
	}
	if rowsA[0].ID == rowsA[1].ID {
		t.Error("distinct rows must get distinct ids")
	}
}

func TestReadCorpusCSVSkipsRowsWithoutText(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"id,reasoning,article_text,sphere,source,date,answer",
		"doc-1,,,,rbc.ru,2024-03-01,neutral",
		"doc-2,has text,,,rbc.ru,2024-03-02,neutral",
		"doc-3",
	}, "\n") + "\n")

	rows, err := ReadCorpusCSV(path)
	if err != nil {
		t.Fatalf("ReadCorpusCSV() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (textless rows skipped, not fatal)", len(rows))
	}
	if rows[0].ID != "doc-2" {
		t.Errorf("kept wrong row: %q", rows[0].ID)
	}
}

func TestReadCorpusCSVEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	rows, err := ReadCorpusCSV(path)
	if err != nil {
		t.Fatalf("empty file must be a valid empty corpus, got: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func TestReadCorpusCSVMissingFile(t *testing.T) {
	if _, err := ReadCorpusCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing corpus file")
	}
}
