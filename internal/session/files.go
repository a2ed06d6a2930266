package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/checksum"
	"github.com/starford/vocab/internal/codec"
	"github.com/starford/vocab/internal/index"
	"github.com/starford/vocab/internal/models"
	"github.com/starford/vocab/internal/storage"
)

// FileResult reports a load or save.
type FileResult struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Topics   int    `json:"topics"`
	Words    int    `json:"words"`
}

// Load replaces the working list with the contents of the vault file at p.
// On any error the working list is left untouched.
func (s *Service) Load(ctx context.Context, p string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Read(p)
	if err != nil {
		s.metrics.ObserveOp("load", err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, p)
		}
		return nil, ioError(p, err)
	}

	st := codec.Inspect(data)
	s.logger.Debug("load: read file", slog.String("path", p), slog.Int("lines", st.Lines),
		slog.Int("blank", st.Blank), slog.Int("topics", st.Topics), slog.Int("words", st.Words))

	list, err := codec.Unmarshal(data)
	s.metrics.ObserveOp("load", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	s.list = list
	s.path = p
	s.sum = checksum.Sum(data)
	s.metrics.SetSize(list.Len(), list.WordCount())
	s.reindex(p, data)

	res := &FileResult{Path: p, Checksum: s.sum, Topics: list.Len(), Words: list.WordCount()}
	s.logger.Info("load: done", slog.String("path", p), slog.Int("topics", res.Topics), slog.Int("words", res.Words))
	s.notify(ChangeLoaded, map[string]any{"path": p, "topics": res.Topics, "words": res.Words})
	return res, nil
}

// Save writes the working list to p, or to the file it came from when p is
// empty. A non-empty ifMatch must equal the checksum of the file currently on
// disk, otherwise ErrConflict is returned and nothing is written.
func (s *Service) Save(ctx context.Context, p, ifMatch string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == "" {
		p = s.path
	}
	if p == "" {
		return nil, fmt.Errorf("%w: no file loaded; a path is required", apperr.ErrInvalidArgument)
	}
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}

	res, err := s.saveLocked(ctx, p, ifMatch)
	s.metrics.ObserveOp("save", err)
	if err != nil {
		return nil, err
	}
	s.notify(ChangeSaved, map[string]any{"path": res.Path, "checksum": res.Checksum})
	return res, nil
}

func (s *Service) saveLocked(_ context.Context, p, ifMatch string) (*FileResult, error) {
	if ifMatch != "" {
		current, err := s.store.Read(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s does not exist", apperr.ErrConflict, p)
			}
			return nil, ioError(p, err)
		}
		if !checksum.Matches(current, ifMatch) {
			return nil, fmt.Errorf("%w: %s changed on disk", apperr.ErrConflict, p)
		}
	}

	data := codec.Marshal(s.list)
	if err := s.store.Write(p, data); err != nil {
		return nil, ioError(p, err)
	}
	s.path = p
	s.sum = checksum.Sum(data)
	s.reindex(p, data)

	s.logger.Debug("save: done", slog.String("path", p), slog.Int("bytes", len(data)))
	return &FileResult{Path: p, Checksum: s.sum, Topics: s.list.Len(), Words: s.list.WordCount()}, nil
}

// Files lists the vocabulary files in the vault.
func (s *Service) Files(_ context.Context) ([]models.FileMetadata, error) {
	return s.store.List("")
}

// Import stores content as a new vault file at p. The content must decode as
// a vocabulary file and p must not exist yet.
func (s *Service) Import(ctx context.Context, p string, content []byte) (*models.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	if _, err := codec.Unmarshal(content); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.store.Exists(p)
	if err != nil {
		return nil, ioError(p, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, p)
	}
	if err := s.store.Write(p, content); err != nil {
		return nil, ioError(p, err)
	}
	s.reindex(p, content)
	s.metrics.ObserveOp("import", nil)

	meta, err := s.store.Stat(p)
	if err != nil {
		return &models.FileMetadata{Path: p, Size: int64(len(content)), Checksum: checksum.Sum(content)}, nil
	}
	return &meta, nil
}

// DeleteFile removes a vault file. The working list is not affected, but a
// later Save without a path will need one.
func (s *Service) DeleteFile(_ context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, p)
		}
		return err
	}
	if s.db != nil {
		if err := s.db.DeleteFile(p); err != nil {
			s.logger.Warn("delete: index delete failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
	if s.path == p {
		s.path, s.sum = "", ""
	}
	return nil
}

// MoveFile renames a vault file, following it if it is the working file.
func (s *Service) MoveFile(_ context.Context, from, to string) error {
	from, err := cleanPath(from)
	if err != nil {
		return err
	}
	to, err = cleanPath(to)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Move(from, to); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, to)
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, from)
		}
		return err
	}
	if s.db != nil {
		if err := s.db.DeleteFile(from); err != nil {
			s.logger.Warn("move: index delete failed", slog.String("path", from), slog.String("error", err.Error()))
		}
		if data, err := s.store.Read(to); err == nil {
			s.reindex(to, data)
		}
	}
	if s.path == from {
		s.path = to
	}
	return nil
}

// SearchVault runs a full-text query across every indexed file.
func (s *Service) SearchVault(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", apperr.ErrInvalidArgument)
	}
	if s.db == nil {
		return []index.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	res, err := s.db.Search(query, limit)
	s.metrics.ObserveOp("search_vault", err)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []index.SearchResult{}
	}
	return res, nil
}

func (s *Service) reindex(p string, data []byte) {
	if s.db == nil {
		return
	}
	if err := index.IndexFile(s.db, p, data); err != nil {
		s.logger.Warn("index update failed", slog.String("path", p), slog.String("error", err.Error()))
	}
}

// ioError reports a failed vault read or write as malformed input, keeping
// the cause.
func ioError(p string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperr.ErrMalformedInput, p, err)
}

// cleanPath normalizes a vault-relative file path and rejects anything that
// is not a vocabulary file inside the vault.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", fmt.Errorf("%w: path is empty", apperr.ErrInvalidArgument)
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: path must be relative to the vault: %s", apperr.ErrInvalidArgument, p)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: path escapes the vault: %s", apperr.ErrInvalidArgument, p)
	}
	if !storage.IsVocabFile(path.Base(p)) {
		return "", fmt.Errorf("%w: %s is not a %s file", apperr.ErrInvalidArgument, p, storage.FileExt)
	}
	return p, nil
}
