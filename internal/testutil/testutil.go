// Package testutil provides shared test helpers for vaults, indexes and notes.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/models"
	"github.com/starford/topicscout/internal/storage"
)

// Now is a fixed reference clock for deterministic recency checks.
var Now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "topicscout-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes content to rel (slash separated) under root, creating
// parent directories.
func WriteNote(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Note builds a note modified at Now with the given words, tags and links.
func Note(path string, words int, tags []string, links ...string) models.Note {
	body := ""
	for i := 0; i < words; i++ {
		if i > 0 {
			body += " "
		}
		body += "word"
	}
	if tags == nil {
		tags = []string{}
	}
	if links == nil {
		links = []string{}
	}
	return models.Note{
		Path:       path,
		Title:      path,
		Body:       body,
		Tags:       tags,
		Links:      links,
		WordCount:  words,
		ModifiedAt: Now,
	}
}
