package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/topicscout/internal/storage"
)

// reconcileDelay debounces the full pass that follows renames and
// directory removals.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

type watcher struct {
	reconciler
	fsw  *fsnotify.Watcher
	root string

	timer   *time.Timer
	timerCh <-chan time.Time
}

// Watch keeps the index in step with the vault until ctx is cancelled,
// calling cb (if non-nil) after each index mutation.
//
// Directories created at runtime are watched and indexed. fsnotify reports
// renames on the old path only, so renames and directory removals schedule
// a debounced reconcile of the whole vault.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &watcher{
		reconciler: reconciler{db: db, store: store, logger: logger, notify: cb},
		fsw:        fsw,
		root:       vaultRoot,
	}
	if err := w.watchTree(vaultRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	for {
		select {
		case <-ctx.Done():
			if w.timer != nil {
				w.timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-w.timerCh:
			if _, err := w.run(""); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addDir(ev.Name)
			return
		}
	}

	rel, ok := notePath(w.root, ev.Name)
	if !ok {
		// A removed or renamed directory takes its notes with it.
		if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			w.scheduleReconcile()
		}
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, err := w.store.Read(rel)
		if err != nil {
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		if err := w.put(rel, data, modTime(ev.Name)); err != nil {
			w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		kind := "updated"
		if ev.Op&fsnotify.Create != 0 {
			kind = "created"
		}
		w.emit(kind, rel)

	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)

	case ev.Op&fsnotify.Rename != 0:
		// The new name arrives as a Create if it stays inside the vault.
		w.remove(rel)
		w.scheduleReconcile()
	}
}

// addDir watches a new directory and indexes the notes already inside it.
func (w *watcher) addDir(abs string) {
	rel, ok := relPath(w.root, abs)
	if !ok {
		return
	}
	if err := w.watchTree(abs); err != nil {
		w.logger.Warn("watcher: add new dir failed", slog.String("path", abs), slog.String("error", err.Error()))
		return
	}
	if _, err := w.run(rel); err != nil {
		w.logger.Warn("watcher: index new dir failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
}

func (w *watcher) scheduleReconcile() {
	if w.timer == nil {
		w.timer = time.NewTimer(reconcileDelay)
		w.timerCh = w.timer.C
		return
	}
	w.timer.Reset(reconcileDelay)
}

// watchTree adds root and all its visible subdirectories.
func (w *watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && storage.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// relPath returns abs relative to root in slash form, rejecting paths
// outside root or under a hidden component.
func relPath(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if storage.IsHidden(part) {
			return "", false
		}
	}
	return rel, true
}

func modTime(abs string) time.Time {
	info, err := os.Stat(abs)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}
