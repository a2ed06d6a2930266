//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries_fts`).Scan(&count); err != nil {
		t.Fatalf("entries_fts table missing: %v", err)
	}
}

func TestFTS5_SearchMatchesTopicAndWord(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "fts.txt", Checksum: "f1"}, []Entry{
		{Position: 1, Topic: "Weather", Word: "drizzle"},
		{Position: 2, Topic: "Drinks", Word: "cocoa"},
	})

	results, err := db.Search("drizzle", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Position != 1 {
		t.Fatalf("results = %+v", results)
	}
	results, _ = db.Search("drinks", 10)
	if len(results) != 1 || results[0].Word != "cocoa" {
		t.Errorf("topic match results = %+v", results)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "gone.txt", Checksum: "g"}, []Entry{{Position: 1, Topic: "T", Word: "vanishing"}})
	_ = db.DeleteFile("gone.txt")

	results, _ := db.Search("vanishing", 10)
	if len(results) != 0 {
		t.Errorf("deleted file still in FTS index: %+v", results)
	}
}

func TestFTS5_MatchExprQuotesTerms(t *testing.T) {
	if got := matchExpr(` blue-green  "x `); got != `"blue-green"* AND """x"*` {
		t.Errorf("matchExpr = %s", got)
	}
	if got := matchExpr("  "); got != "" {
		t.Errorf("blank = %q", got)
	}
}
