package index

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/topicscout/internal/checksum"
	"github.com/starford/topicscout/internal/parser"
	"github.com/starford/topicscout/internal/storage"
)

// Sync brings the index in line with the whole vault: new and changed
// files are parsed and upserted, entries whose file is gone are deleted.
// Files that fail to read or parse are logged and left out.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	r := reconciler{db: db, store: store, logger: logger}
	res, err := r.run("")
	if err != nil {
		return err
	}
	logger.Info("sync: done",
		slog.Int("files", res.files),
		slog.Int("indexed", res.indexed),
		slog.Int("removed", res.removed))
	return nil
}

// reconciler applies disk state to the index and reports each change to
// notify, when set.
type reconciler struct {
	db     *DB
	store  storage.Provider
	logger *slog.Logger
	notify EventCallback
}

type reconcileResult struct {
	files, indexed, removed int
}

func (r reconciler) emit(kind, path string) {
	if r.notify != nil {
		r.notify(kind, path)
	}
}

// run reconciles the notes under dir, a slash-separated vault-relative
// directory ("" for the whole vault). Only index entries inside dir are
// candidates for removal.
func (r reconciler) run(dir string) (reconcileResult, error) {
	var res reconcileResult
	metas, err := r.store.List(dir)
	if err != nil {
		return res, fmt.Errorf("index: list %q: %w", dir, err)
	}
	checksums, err := r.db.AllChecksums()
	if err != nil {
		return res, err
	}
	res.files = len(metas)

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
		prev, known := checksums[m.Path]
		if prev == m.Checksum {
			continue
		}
		data, err := r.store.Read(m.Path)
		if err != nil {
			r.logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := r.put(m.Path, data, m.UpdatedAt); err != nil {
			r.logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		res.indexed++
		if known {
			r.emit("updated", m.Path)
		} else {
			r.emit("created", m.Path)
		}
	}

	prefix := ""
	if dir != "" {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}
	for p := range checksums {
		if _, ok := onDisk[p]; ok || !strings.HasPrefix(p, prefix) {
			continue
		}
		if err := r.db.DeleteNote(p); err != nil {
			r.logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		res.removed++
		r.emit("deleted", p)
	}
	return res, nil
}

// put parses data and upserts it as the note at rel.
func (r reconciler) put(rel string, data []byte, modified time.Time) error {
	n, err := parser.ParseNote(rel, data)
	if err != nil {
		return err
	}
	n.ModifiedAt = modified
	if err := n.Validate(); err != nil {
		return fmt.Errorf("index: invalid note %s: %w", rel, err)
	}
	return r.db.UpsertNote(*n, checksum.Sum(data))
}

// remove deletes the note at rel and reports it.
func (r reconciler) remove(rel string) {
	if err := r.db.DeleteNote(rel); err != nil {
		r.logger.Warn("sync: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	r.emit("deleted", rel)
}

// notePath maps an absolute file path to its vault-relative note path.
// It rejects non-Markdown files and anything under a hidden component.
func notePath(root, abs string) (string, bool) {
	if !strings.HasSuffix(abs, ".md") {
		return "", false
	}
	rel, ok := relPath(root, abs)
	return rel, ok
}
