package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "vocab-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&count); err != nil {
		t.Fatalf("files table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := FileRow{Path: "animals.txt", Checksum: "abc123", Topics: 1, Words: 2, UpdatedAt: time.Now()}
	entries := []Entry{{Position: 1, Topic: "Animals", Word: "Cat"}, {Position: 1, Topic: "Animals", Word: "Dog"}}
	if err := db.UpsertFile(row, entries); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	cs, err := db.GetChecksum("animals.txt")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertReplacesEntries(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "f.txt", Checksum: "1"}, []Entry{{Position: 1, Topic: "Old", Word: "stale"}})
	_ = db.UpsertFile(FileRow{Path: "f.txt", Checksum: "2"}, []Entry{{Position: 1, Topic: "New", Word: "fresh"}})

	cs, _ := db.GetChecksum("f.txt")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	if res, _ := db.Search("stale", 10); len(res) != 0 {
		t.Errorf("old entry still searchable: %+v", res)
	}
	if res, _ := db.Search("fresh", 10); len(res) != 1 {
		t.Errorf("new entry not searchable: %+v", res)
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "del.txt", Checksum: "x"}, []Entry{{Position: 1, Topic: "T", Word: "gone"}})

	if err := db.DeleteFile("del.txt"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	cs, _ := db.GetChecksum("del.txt")
	if cs != "" {
		t.Errorf("deleted file still has checksum %q", cs)
	}
	if res, _ := db.Search("gone", 10); len(res) != 0 {
		t.Errorf("deleted entries still searchable: %+v", res)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListFilesAndChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "b.txt", Checksum: "2", Topics: 3, Words: 7}, nil)
	_ = db.UpsertFile(FileRow{Path: "a.txt", Checksum: "1"}, nil)

	files, err := db.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 || files[0].Path != "a.txt" || files[1].Topics != 3 || files[1].Words != 7 {
		t.Errorf("files = %+v", files)
	}

	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if sums["a.txt"] != "1" || sums["b.txt"] != "2" {
		t.Errorf("checksums = %v", sums)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "s.txt", Checksum: "1"}, []Entry{
		{Position: 1, Topic: "Animals", Word: "Aardvark"},
		{Position: 2, Topic: "Colors", Word: "Red"},
	})

	results, err := db.Search("aardvark", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.txt" || results[0].Topic != "Animals" || results[0].Word != "Aardvark" {
		t.Errorf("search results = %+v, want 1 hit for s.txt", results)
	}
}

func TestSearch_AllTermsRequired(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "s.txt", Checksum: "1"}, []Entry{
		{Position: 1, Topic: "Animals", Word: "Aardvark"},
		{Position: 1, Topic: "Animals", Word: "Bee"},
		{Position: 2, Topic: "Colors", Word: "Aardvark-brown"},
	})

	results, err := db.Search("animals aard", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Word != "Aardvark" {
		t.Errorf("results = %+v", results)
	}
	if results, _ := db.Search("   ", 10); len(results) != 0 {
		t.Errorf("blank query results = %+v", results)
	}
}

func TestOpen_DropsOtherSchemaVersion(t *testing.T) {
	db := testDB(t)
	path := tempPath(t, db)
	_ = db.UpsertFile(FileRow{Path: "a.txt", Checksum: "1"}, nil)
	if _, err := db.conn.Exec(`PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	sums, _ := reopened.AllChecksums()
	if len(sums) != 0 {
		t.Errorf("old index rows survived: %v", sums)
	}
	var version int
	_ = reopened.conn.QueryRow(`PRAGMA user_version`).Scan(&version)
	if version != schemaVersion {
		t.Errorf("user_version = %d", version)
	}
}

// tempPath returns the file behind a test database.
func tempPath(t *testing.T, db *DB) string {
	t.Helper()
	var seq int
	var name, file string
	if err := db.conn.QueryRow(`PRAGMA database_list`).Scan(&seq, &name, &file); err != nil {
		t.Fatal(err)
	}
	return file
}
