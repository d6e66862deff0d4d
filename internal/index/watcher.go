package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docxreader/internal/checksum"
	"github.com/starford/docxreader/internal/storage"
)

// Watcher event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// settleDelay is how long a path must stay quiet before it is re-indexed.
// Word processors write packages in several steps.
const settleDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven catalog change.
// kind is one of EventCreated, EventUpdated, EventDeleted; path is relative
// to the library root.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful catalog mutation.
//
// Writes are debounced per path. New directories created at runtime are
// added to the watch list. Rename events trigger a reconciliation pass
// that removes stale entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	root := store.Root()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// pending maps library paths to the kind of change seen since the last flush.
	pending := make(map[string]string)
	var settleTimer *time.Timer
	var settleCh <-chan time.Time
	reconcile := false

	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			for rel, kind := range pending {
				indexChanged(db, store, rel, kind, logger, cb)
			}
			clear(pending)
			if reconcile {
				reconcile = false
				reconcileLibrary(db, store, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					reconcile = true
					schedule()
					continue
				}
			}

			if !storage.IsDocument(absPath) {
				continue
			}
			rel, relErr := store.Rel(absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if pending[rel] != EventCreated {
					pending[rel] = EventUpdated
					if ev.Op&fsnotify.Create != 0 {
						pending[rel] = EventCreated
					}
				}
				schedule()

			case ev.Op&fsnotify.Remove != 0:
				delete(pending, rel)
				removeDocument(db, rel, logger, cb)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new path
				// arrives as a Create when it stays inside a watched dir.
				delete(pending, rel)
				removeDocument(db, rel, logger, cb)
				reconcile = true
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func indexChanged(db *DB, store storage.Provider, rel, kind string, logger *slog.Logger, cb EventCallback) {
	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if old, _ := db.GetChecksum(rel); checksum.Equal(data, old) {
		logger.Debug("watcher: unchanged", slog.String("path", rel))
		return
	}
	if _, err := IndexFile(db, rel, data); err != nil {
		logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	if cb != nil {
		cb(kind, rel)
	}
}

func removeDocument(db *DB, rel string, logger *slog.Logger, cb EventCallback) {
	cs, _ := db.GetChecksum(rel)
	if cs == "" {
		return
	}
	if err := db.DeleteDocument(rel); err != nil {
		logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: deleted", slog.String("path", rel))
	if cb != nil {
		cb(EventDeleted, rel)
	}
}

// reconcileLibrary finds catalog entries without a corresponding file on disk
// and removes them, and indexes on-disk files that are missing or changed.
func reconcileLibrary(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			removeDocument(db, p, logger, cb)
		}
	}

	for p, cs := range disk {
		old, known := checksums[p]
		if old == cs {
			continue
		}
		kind := EventUpdated
		if !known {
			kind = EventCreated
		}
		indexChanged(db, store, p, kind, logger, cb)
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
