package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/vocab/internal/vocab"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Topics    int       `json:"topics"`
	Words     int       `json:"words"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one indexed word with the topic it belongs to.
type Entry struct {
	Position int
	Topic    string
	Word     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path     string `json:"path"`
	Position int    `json:"position"`
	Topic    string `json:"topic"`
	Word     string `json:"word"`
}

// EntriesOf flattens a topic list into index entries.
func EntriesOf(l *vocab.List) []Entry {
	out := make([]Entry, 0, l.WordCount())
	for pos, t := range l.All() {
		for _, w := range t.Words() {
			out = append(out, Entry{Position: pos, Topic: t.Name, Word: w})
		}
	}
	return out
}

// RowOf builds the files row for a decoded list.
func RowOf(path, sum string, l *vocab.List) FileRow {
	return FileRow{
		Path:      path,
		Checksum:  sum,
		Topics:    l.Len(),
		Words:     l.WordCount(),
		UpdatedAt: time.Now(),
	}
}

// UpsertFile replaces a file row and all of its entries within a transaction.
func (db *DB) UpsertFile(f FileRow, entries []Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, topics, words, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			topics     = excluded.topics,
			words      = excluded.words,
			updated_at = excluded.updated_at
	`, f.Path, f.Checksum, f.Topics, f.Words, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entries WHERE path = ?`, f.Path); err != nil {
		return fmt.Errorf("index: clear entries: %w", err)
	}
	if len(entries) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO entries (path, position, topic, word, word_lower) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(f.Path, e.Position, e.Topic, e.Word, strings.ToLower(e.Word)); err != nil {
				return fmt.Errorf("index: insert entry: %w", err)
			}
		}
	}

	if err := ftsReplace(tx, f.Path, entries); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFile removes a file row and its entries.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListFiles returns every indexed file ordered by path.
func (db *DB) ListFiles() ([]FileRow, error) {
	rows, err := db.conn.Query(`SELECT path, checksum, topics, words, updated_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Path, &f.Checksum, &f.Topics, &f.Words, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const defaultSearchLimit = 20

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Position, &r.Topic, &r.Word); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
