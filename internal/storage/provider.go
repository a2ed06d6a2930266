// Package storage keeps vocabulary files in a vault directory. Paths are
// slash-separated and relative to the vault root; only .txt files are read
// or written.
package storage

import (
	"strings"

	"github.com/starford/vocab/internal/models"
)

// FileExt is the extension of vocabulary files inside the vault.
const FileExt = ".txt"

// Provider is what the session service and the index need from a vault.
// Missing files surface as errors matching fs.ErrNotExist.
type Provider interface {
	List(dir string) ([]models.FileMetadata, error)
	Stat(path string) (models.FileMetadata, error)
	Exists(path string) (bool, error)
	Read(path string) ([]byte, error)
	// Write replaces the file atomically, creating parent directories.
	Write(path string, content []byte) error
	Delete(path string) error
	// Move fails with fs.ErrExist rather than overwrite newPath.
	Move(oldPath, newPath string) error
	Root() string
}

// IsVocabFile reports whether name carries the vocabulary file extension.
func IsVocabFile(name string) bool {
	return len(name) > len(FileExt) && strings.HasSuffix(name, FileExt)
}
