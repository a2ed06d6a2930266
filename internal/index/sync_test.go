package index

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/vocab/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSync_IndexesAndPrunes(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("animals.txt", []byte("# Animals\nCat\nDog\n"))
	_ = store.Write("broken.txt", []byte("orphan word\n# Late\n"))
	_ = db.UpsertFile(FileRow{Path: "stale.txt", Checksum: "old"}, nil)

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	sums, _ := db.AllChecksums()
	if _, ok := sums["animals.txt"]; !ok {
		t.Error("animals.txt not indexed")
	}
	if _, ok := sums["broken.txt"]; ok {
		t.Error("malformed file should not be indexed")
	}
	if _, ok := sums["stale.txt"]; ok {
		t.Error("stale entry not pruned")
	}

	files, _ := db.ListFiles()
	if len(files) != 1 || files[0].Topics != 1 || files[0].Words != 2 {
		t.Errorf("files = %+v", files)
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	db := testDB(t)
	store, _ := storage.NewFS(t.TempDir())
	_ = store.Write("a.txt", []byte("# A\nx\n"))

	_ = Sync(db, store, quietLogger())
	before, _ := db.ListFiles()
	_ = Sync(db, store, quietLogger())
	after, _ := db.ListFiles()

	if len(before) != 1 || len(after) != 1 || !before[0].UpdatedAt.Equal(after[0].UpdatedAt) {
		t.Errorf("unchanged file was re-indexed: before=%+v after=%+v", before, after)
	}
}

func TestDiff_ClassifiesChanges(t *testing.T) {
	db := testDB(t)
	store, _ := storage.NewFS(t.TempDir())
	_ = store.Write("new.txt", []byte("# N\nx\n"))
	_ = store.Write("same.txt", []byte("# S\ny\n"))
	_ = store.Write("edited.txt", []byte("# E\nz\n"))
	_ = Sync(db, store, quietLogger())

	_ = store.Delete("new.txt")
	_ = store.Write("edited.txt", []byte("# E\nz\nzz\n"))
	_ = store.Write("added.txt", []byte("# A\n"))

	stale, changed, err := diff(db, store)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(stale) != 1 || stale[0] != "new.txt" {
		t.Errorf("stale = %v", stale)
	}
	want := []change{{path: "added.txt", kind: EventCreated}, {path: "edited.txt", kind: EventUpdated}}
	if len(changed) != len(want) || changed[0] != want[0] || changed[1] != want[1] {
		t.Errorf("changed = %+v, want %+v", changed, want)
	}

	var events []string
	apply(db, store, quietLogger(), stale, changed, func(kind, p string) { events = append(events, kind+":"+p) })
	if got := strings.Join(events, ","); got != "deleted:new.txt,created:added.txt,updated:edited.txt" {
		t.Errorf("events = %s", got)
	}
}
