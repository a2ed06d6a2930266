package index

import (
	"log/slog"

	"github.com/starford/vocab/internal/checksum"
	"github.com/starford/vocab/internal/codec"
	"github.com/starford/vocab/internal/storage"
)

// change is one file that needs (re)indexing.
type change struct {
	path string
	kind string // EventCreated or EventUpdated
}

// diff compares the index with the vault. stale lists indexed paths that no
// longer exist; changed lists files that are new or whose checksum moved.
func diff(db FileIndex, store storage.Provider) (stale []string, changed []change, err error) {
	indexed, err := db.AllChecksums()
	if err != nil {
		return nil, nil, err
	}
	metas, err := store.List("")
	if err != nil {
		return nil, nil, err
	}

	onDisk := make(map[string]bool, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = true
		old, known := indexed[m.Path]
		switch {
		case !known:
			changed = append(changed, change{path: m.Path, kind: EventCreated})
		case old != m.Checksum:
			changed = append(changed, change{path: m.Path, kind: EventUpdated})
		}
	}
	for p := range indexed {
		if !onDisk[p] {
			stale = append(stale, p)
		}
	}
	return stale, changed, nil
}

// apply executes a diff. notify may be nil; it is called once per path the
// index actually took.
func apply(db FileIndex, store storage.Provider, logger *slog.Logger, stale []string, changed []change, notify EventCallback) {
	for _, p := range stale {
		if err := db.DeleteFile(p); err != nil {
			logger.Warn("index: drop stale failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("index: dropped stale", slog.String("path", p))
		if notify != nil {
			notify(EventDeleted, p)
		}
	}
	for _, c := range changed {
		data, err := store.Read(c.path)
		if err != nil {
			logger.Warn("index: read failed", slog.String("path", c.path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, c.path, data); err != nil {
			// A file that does not decode stays out of the index until fixed.
			logger.Warn("index: skipped file", slog.String("path", c.path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("index: indexed", slog.String("path", c.path), slog.String("op", c.kind))
		if notify != nil {
			notify(c.kind, c.path)
		}
	}
}

// Sync brings the index up to date with the vault. Files that fail to
// decode are logged and left out.
func Sync(db FileIndex, store storage.Provider, logger *slog.Logger) error {
	stale, changed, err := diff(db, store)
	if err != nil {
		return err
	}
	apply(db, store, logger, stale, changed, nil)
	logger.Info("index: synced", slog.Int("indexed", len(changed)), slog.Int("dropped", len(stale)))
	return nil
}

// IndexFile decodes data and upserts it into the index.
func IndexFile(db FileIndex, path string, data []byte) error {
	list, err := codec.Unmarshal(data)
	if err != nil {
		return err
	}
	return db.UpsertFile(RowOf(path, checksum.Sum(data), list), EntriesOf(list))
}
