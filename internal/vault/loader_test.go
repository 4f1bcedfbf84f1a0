package vault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/topicscout/internal/models"
	"github.com/starford/topicscout/internal/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoad_WholeVault(t *testing.T) {
	root := writeVault(t, map[string]string{
		"a.md":                "---\ntitle: Alpha\ntags: [go]\n---\nsome body words [[b]]",
		"ideas/b.md":          "#go inline tag",
		".obsidian/config.md": "hidden",
		"notes.txt":           "not markdown",
	})
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}

	notes, err := Load(context.Background(), store, nil, discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(notes), notes)
	}
	a := notes[0]
	if a.Path != "a.md" || a.Title != "Alpha" || a.WordCount != 4 {
		t.Errorf("a = %+v", a)
	}
	if len(a.Links) != 1 || a.Links[0] != "b" {
		t.Errorf("a links = %v", a.Links)
	}
	if a.ModifiedAt.IsZero() || time.Since(a.ModifiedAt) > time.Hour {
		t.Errorf("modified at = %v", a.ModifiedAt)
	}
	if notes[1].Path != "ideas/b.md" || notes[1].Title != "b" {
		t.Errorf("b = %+v", notes[1])
	}
}

func TestLoad_SortedByteWise(t *testing.T) {
	root := writeVault(t, map[string]string{
		"a/one.md":     "x",
		"a/two.md":     "x",
		"a-b/three.md": "x",
	})
	store, _ := storage.NewFS(root)

	notes, err := Load(context.Background(), store, nil, discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"a-b/three.md", "a/one.md", "a/two.md"}
	if len(notes) != len(want) {
		t.Fatalf("notes = %+v", notes)
	}
	for i, n := range notes {
		if n.Path != want[i] {
			t.Errorf("notes[%d] = %s, want %s", i, n.Path, want[i])
		}
	}
}

func TestLoad_FoldersAndMissingFolder(t *testing.T) {
	root := writeVault(t, map[string]string{
		"top.md":         "x",
		"thoughts/t.md":  "x",
		"ideas/i.md":     "x",
		"ideas/sub/j.md": "x",
	})
	store, _ := storage.NewFS(root)

	notes, err := Load(context.Background(), store, []string{"thoughts", "missing", "ideas", "ideas/sub"}, discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var got []string
	for _, n := range notes {
		got = append(got, n.Path)
	}
	want := []string{"ideas/i.md", "ideas/sub/j.md", "thoughts/t.md"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths = %v, want %v", got, want)
			break
		}
	}
}

type flakyStore struct {
	storage.Provider
	fail string
}

func (f flakyStore) Read(path string) ([]byte, error) {
	if path == f.fail {
		return nil, errors.New("disk on fire")
	}
	return f.Provider.Read(path)
}

func TestLoad_UnreadableNoteDropped(t *testing.T) {
	root := writeVault(t, map[string]string{"ok.md": "fine", "bad.md": "unreadable"})
	fs, _ := storage.NewFS(root)

	notes, err := Load(context.Background(), flakyStore{Provider: fs, fail: "bad.md"}, nil, discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 1 || notes[0].Path != "ok.md" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	root := writeVault(t, map[string]string{"a.md": "x"})
	store, _ := storage.NewFS(root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, store, nil, discard); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSource_Notes(t *testing.T) {
	root := writeVault(t, map[string]string{"a.md": "x"})
	store, _ := storage.NewFS(root)
	var src interface {
		Notes(context.Context) ([]models.Note, error)
	} = NewSource(store, nil, discard)

	notes, err := src.Notes(context.Background())
	if err != nil || len(notes) != 1 {
		t.Fatalf("Notes = %v, %v", notes, err)
	}
}
