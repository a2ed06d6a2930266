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

	"github.com/starford/vocab/internal/storage"
)

// File event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

const rescanDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, path string)

type watcher struct {
	fw     *fsnotify.Watcher
	db     FileIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	notify EventCallback
}

// Watch keeps the index in step with the vault until ctx is cancelled. cb,
// if non-nil, hears about every index change the watcher makes.
//
// New directories are watched as they appear. Renames and new directories
// schedule a debounced rescan, since fsnotify reports only one side of a
// rename and files can land in a directory before it is watched.
func Watch(ctx context.Context, db FileIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if cb == nil {
		cb = func(string, string) {}
	}
	w := &watcher{fw: fw, db: db, store: store, root: store.Root(), logger: logger, notify: cb}
	if err := w.addTree(w.root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", w.root))

	rescan := time.NewTimer(rescanDelay)
	rescan.Stop()
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil
		case <-rescan.C:
			w.rescan()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				rescan.Reset(rescanDelay)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// handle applies one fsnotify event and reports whether a rescan is due.
func (w *watcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			return true
		}
	}

	rel, ok := w.vaultPath(ev.Name)
	if !ok {
		// A renamed or removed directory takes its files with it.
		return ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
	}

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		data, err := w.store.Read(rel)
		if err != nil {
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		if err := IndexFile(w.db, rel, data); err != nil {
			w.logger.Warn("watcher: skipped file", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		kind := EventUpdated
		if ev.Has(fsnotify.Create) {
			kind = EventCreated
		}
		w.notify(kind, rel)
	case ev.Has(fsnotify.Remove):
		w.drop(rel)
	case ev.Has(fsnotify.Rename):
		w.drop(rel)
		return true
	}
	return false
}

func (w *watcher) drop(rel string) {
	if err := w.db.DeleteFile(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.notify(EventDeleted, rel)
}

func (w *watcher) rescan() {
	stale, changed, err := diff(w.db, w.store)
	if err != nil {
		w.logger.Warn("watcher: rescan failed", slog.String("error", err.Error()))
		return
	}
	apply(w.db, w.store, w.logger, stale, changed, w.notify)
}

// vaultPath converts an event path into a vault path, rejecting
// non-vocabulary files and anything hidden, such as the storage layer's temp
// files.
func (w *watcher) vaultPath(name string) (string, bool) {
	if !storage.IsVocabFile(filepath.Base(name)) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for part := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	return rel, true
}

// addTree watches dir and every non-hidden directory below it.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fw.Add(p)
	})
}
