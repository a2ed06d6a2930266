package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/vocab/internal/checksum"
	"github.com/starford/vocab/internal/models"
)

// Temp files written next to their target before the rename. List and the
// watcher skip them because of the leading dot.
const tmpPattern = ".vocab-tmp-*"

// FS is a Provider over a directory of vocabulary files.
type FS struct {
	root string
}

// NewFS opens an existing vault directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// resolve maps a slash-separated vault path to an absolute path. An empty
// rel is the root itself.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("storage: path outside vault: %s", rel)
	}
	return filepath.Join(f.root, local), nil
}

// resolveFile is resolve restricted to vocabulary file names.
func (f *FS) resolveFile(rel string) (string, error) {
	if !IsVocabFile(filepath.Base(rel)) {
		return "", fmt.Errorf("storage: not a %s file: %s", FileExt, rel)
	}
	return f.resolve(rel)
}

func (f *FS) metadata(abs string, info fs.FileInfo) (models.FileMetadata, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.FileMetadata{}, err
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return models.FileMetadata{}, err
	}
	return models.FileMetadata{
		Path:      filepath.ToSlash(rel),
		Size:      info.Size(),
		Checksum:  checksum.Sum(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// List returns every vocabulary file under dir, sorted by path. Hidden
// files and directories are skipped.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.FileMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := strings.HasPrefix(d.Name(), ".") && p != base
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !IsVocabFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		meta, err := f.metadata(p, info)
		if err != nil {
			return err
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	slices.SortFunc(out, func(a, b models.FileMetadata) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// Stat returns the metadata of one vocabulary file.
func (f *FS) Stat(path string) (models.FileMetadata, error) {
	abs, err := f.resolveFile(path)
	if err != nil {
		return models.FileMetadata{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.FileMetadata{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	meta, err := f.metadata(abs, info)
	if err != nil {
		return models.FileMetadata{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return meta, nil
}

// Exists reports whether a vocabulary file is present at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.resolveFile(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
}

// Read returns the raw bytes of a vocabulary file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolveFile(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path through a synced temp file and a rename, so readers
// see either the old list or the new one.
func (f *FS) Write(path string, content []byte) (err error) {
	abs, err := f.resolveFile(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Delete removes a vocabulary file.
func (f *FS) Delete(path string) error {
	abs, err := f.resolveFile(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a vocabulary file. It fails with fs.ErrExist when newPath is
// taken.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.resolveFile(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.resolveFile(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absOld); err != nil {
		return fmt.Errorf("storage: move %s: %w", oldPath, err)
	}
	if _, err := os.Stat(absNew); err == nil {
		return fmt.Errorf("storage: move to %s: %w", newPath, fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}
