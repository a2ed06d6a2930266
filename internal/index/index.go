package index

// FileIndex defines the vault index operations the session service and the
// watcher depend on.
type FileIndex interface {
	UpsertFile(f FileRow, entries []Entry) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListFiles() ([]FileRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies FileIndex at compile time.
var _ FileIndex = (*DB)(nil)
