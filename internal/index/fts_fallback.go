//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the entries table is searched directly.
func initFTS(*sql.DB) error { return nil }

func ftsReplace(*sql.Tx, string, []Entry) error { return nil }

func ftsDelete(*sql.Tx, string) {}

// Search matches words and topic names containing every query term,
// ignoring case.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		where []string
		args  []any
	)
	for _, t := range terms {
		like := "%" + escapeLike(t) + "%"
		where = append(where, `(word_lower LIKE ? ESCAPE '\' OR lower(topic) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	args = append(args, limit)

	rows, err := db.conn.Query(`
		SELECT path, position, topic, word
		FROM entries
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY path, position, rowid
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
