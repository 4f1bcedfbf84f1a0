// Package vault turns a directory of Markdown files into note records.
package vault

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/topicscout/internal/models"
	"github.com/starford/topicscout/internal/parser"
	"github.com/starford/topicscout/internal/storage"
)

const defaultReadWorkers = 8

// Source loads notes from a vault on every call.
type Source struct {
	store   storage.Provider
	folders []string
	logger  *slog.Logger
}

// NewSource creates a Source scanning folders (all of the vault when empty).
func NewSource(store storage.Provider, folders []string, logger *slog.Logger) *Source {
	return &Source{store: store, folders: folders, logger: logger}
}

// Notes scans the vault.
func (s *Source) Notes(ctx context.Context) ([]models.Note, error) {
	return Load(ctx, s.store, s.folders, s.logger)
}

// Load reads and parses every visible .md file under folders. Folders that
// do not exist are skipped. Files that cannot be read, parsed or validated
// are logged and dropped. The result is sorted by path, byte-wise, which is
// the order the live index returns, so both feed the clusterer identically.
func Load(ctx context.Context, store storage.Provider, folders []string, logger *slog.Logger) ([]models.Note, error) {
	metas, err := collect(store, folders, logger)
	if err != nil {
		return nil, err
	}

	slots := make([]*models.Note, len(metas))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(defaultReadWorkers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			n, err := readNote(store, m)
			if err != nil {
				logger.Warn("vault: skipping note", slog.String("path", m.Path), slog.String("error", err.Error()))
				return nil
			}
			slots[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("vault: load: %w", err)
	}

	notes := make([]models.Note, 0, len(slots))
	for _, n := range slots {
		if n != nil {
			notes = append(notes, *n)
		}
	}
	slices.SortStableFunc(notes, func(a, b models.Note) int { return strings.Compare(a.Path, b.Path) })
	logger.Debug("vault: loaded", slog.Int("files", len(metas)), slog.Int("notes", len(notes)))
	return notes, nil
}

func collect(store storage.Provider, folders []string, logger *slog.Logger) ([]models.NoteMetadata, error) {
	if len(folders) == 0 {
		folders = []string{""}
	}
	seen := make(map[string]struct{})
	var out []models.NoteMetadata
	for _, dir := range folders {
		if dir != "" && !store.Exists(dir) {
			logger.Warn("vault: folder not found", slog.String("folder", dir))
			continue
		}
		metas, err := store.List(dir)
		if err != nil {
			return nil, fmt.Errorf("vault: list %q: %w", dir, err)
		}
		for _, m := range metas {
			if _, dup := seen[m.Path]; dup {
				continue
			}
			seen[m.Path] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

func readNote(store storage.Provider, m models.NoteMetadata) (*models.Note, error) {
	data, err := store.Read(m.Path)
	if err != nil {
		return nil, err
	}
	n, err := parser.ParseNote(m.Path, data)
	if err != nil {
		return nil, err
	}
	n.ModifiedAt = m.UpdatedAt
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
