// Package session owns the working vocabulary list and exposes the
// operations callers (CLI, REST API, MCP tools) run against it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/index"
	"github.com/starford/vocab/internal/metrics"
	"github.com/starford/vocab/internal/models"
	"github.com/starford/vocab/internal/storage"
	"github.com/starford/vocab/internal/vocab"
)

// Change kinds reported to the ChangeFunc.
const (
	ChangeTopicInserted = "topic.inserted"
	ChangeTopicRemoved  = "topic.removed"
	ChangeWordAdded     = "word.added"
	ChangeWordRemoved   = "word.removed"
	ChangeWordChanged   = "word.changed"
	ChangeLoaded        = "session.loaded"
	ChangeSaved         = "session.saved"
)

// ChangeFunc receives every successful mutation.
type ChangeFunc func(kind string, data map[string]any)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records operations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithOnChange registers fn for mutation notifications.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Service) { s.onChange = fn }
}

// WithAutosave persists the list to its file after every mutation.
func WithAutosave(enabled bool) Option {
	return func(s *Service) { s.autosave = enabled }
}

// Service holds one working list. The list itself does no locking, so every
// operation runs under mu.
type Service struct {
	mu   sync.Mutex
	list *vocab.List
	path string // file the list was last loaded from or saved to
	sum  string // checksum of that file as last seen

	store    storage.Provider
	db       index.FileIndex
	logger   *slog.Logger
	metrics  *metrics.Metrics
	onChange ChangeFunc
	autosave bool
}

// NewService creates a service with an empty working list. db may be nil,
// which disables vault indexing and vault search.
func NewService(store storage.Provider, db index.FileIndex, opts ...Option) *Service {
	s := &Service{
		list:   vocab.NewList(),
		store:  store,
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// Status describes the working list.
type Status struct {
	Path     string `json:"path,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Topics   int    `json:"topics"`
	Words    int    `json:"words"`
	Autosave bool   `json:"autosave"`
}

// Status returns a summary of the working list.
func (s *Service) Status(_ context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Path:     s.path,
		Checksum: s.sum,
		Topics:   s.list.Len(),
		Words:    s.list.WordCount(),
		Autosave: s.autosave,
	}
}

// InsertTopicBefore creates a topic and places it before position pos.
func (s *Service) InsertTopicBefore(ctx context.Context, pos int, name string, words []string) (*models.TopicDetail, error) {
	return s.insertTopic(ctx, "insert_topic_before", pos, name, words, false)
}

// InsertTopicAfter creates a topic and places it after position pos.
func (s *Service) InsertTopicAfter(ctx context.Context, pos int, name string, words []string) (*models.TopicDetail, error) {
	return s.insertTopic(ctx, "insert_topic_after", pos, name, words, true)
}

func (s *Service) insertTopic(ctx context.Context, op string, pos int, name string, words []string, after bool) (*models.TopicDetail, error) {
	var out *models.TopicDetail
	err := s.mutate(ctx, op, func(l *vocab.List) (string, map[string]any, error) {
		t, err := vocab.NewTopic(name, words...)
		if err != nil {
			return "", nil, err
		}
		at := pos
		if after {
			err = l.InsertAfter(pos, t)
			at = pos + 1
		} else {
			err = l.InsertBefore(pos, t)
		}
		if err != nil {
			return "", nil, err
		}
		out = detail(at, t)
		return ChangeTopicInserted, map[string]any{"position": at, "name": t.Name}, nil
	})
	return out, err
}

// RemoveTopic deletes the topic at pos and returns it.
func (s *Service) RemoveTopic(ctx context.Context, pos int) (*models.TopicDetail, error) {
	var out *models.TopicDetail
	err := s.mutate(ctx, "remove_topic", func(l *vocab.List) (string, map[string]any, error) {
		t, err := l.RemoveAt(pos)
		if err != nil {
			return "", nil, err
		}
		out = detail(pos, t)
		return ChangeTopicRemoved, map[string]any{"position": pos, "name": t.Name}, nil
	})
	return out, err
}

// AddWord adds word to the topic at pos unless it is already listed.
func (s *Service) AddWord(ctx context.Context, pos int, word string) error {
	return s.mutate(ctx, "add_word", func(l *vocab.List) (string, map[string]any, error) {
		t, err := l.At(pos)
		if err != nil {
			return "", nil, err
		}
		if err := t.AddWord(word); err != nil {
			return "", nil, err
		}
		return ChangeWordAdded, map[string]any{"position": pos, "word": strings.TrimSpace(word)}, nil
	})
}

// RemoveWord removes word from the topic at pos.
func (s *Service) RemoveWord(ctx context.Context, pos int, word string) error {
	return s.mutate(ctx, "remove_word", func(l *vocab.List) (string, map[string]any, error) {
		t, err := l.At(pos)
		if err != nil {
			return "", nil, err
		}
		if err := t.RemoveWord(word); err != nil {
			return "", nil, err
		}
		return ChangeWordRemoved, map[string]any{"position": pos, "word": word}, nil
	})
}

// ChangeWord replaces oldWord with newWord in the topic at pos.
func (s *Service) ChangeWord(ctx context.Context, pos int, oldWord, newWord string) error {
	return s.mutate(ctx, "change_word", func(l *vocab.List) (string, map[string]any, error) {
		t, err := l.At(pos)
		if err != nil {
			return "", nil, err
		}
		if err := t.ChangeWord(oldWord, newWord); err != nil {
			return "", nil, err
		}
		return ChangeWordChanged, map[string]any{"position": pos, "old": oldWord, "new": strings.TrimSpace(newWord)}, nil
	})
}

// ListTopics returns the numbered topic listing.
func (s *Service) ListTopics(_ context.Context) []models.TopicSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TopicSummary, 0, s.list.Len())
	for pos, t := range s.list.All() {
		out = append(out, models.TopicSummary{Position: pos, Name: t.Name, WordCount: t.Len()})
	}
	return out
}

// ListWords returns the topic at pos with its words.
func (s *Service) ListWords(_ context.Context, pos int) (*models.TopicDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.list.At(pos)
	if err != nil {
		return nil, err
	}
	return detail(pos, t), nil
}

// SearchWord reports, per topic, the first case-insensitive match of word.
func (s *Service) SearchWord(_ context.Context, word string) ([]vocab.Hit, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("%w: search word is empty", apperr.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := vocab.FindWord(s.list, word)
	s.metrics.ObserveOp("search_word", nil)
	return hits, nil
}

// WordsStartingWith returns every word starting with letter, sorted ignoring
// case. letter must be a single character; it is not required to be
// alphabetic.
func (s *Service) WordsStartingWith(_ context.Context, letter string) ([]string, error) {
	letter = strings.TrimSpace(letter)
	if utf8.RuneCountInString(letter) != 1 {
		return nil, fmt.Errorf("%w: expected a single letter, got %q", apperr.ErrInvalidArgument, letter)
	}
	r, _ := utf8.DecodeRuneInString(letter)
	s.mu.Lock()
	defer s.mu.Unlock()
	words := vocab.WordsStartingWith(s.list, r)
	s.metrics.ObserveOp("words_starting_with", nil)
	return words, nil
}

// mutate runs fn under the lock and, on success, autosaves, updates metrics
// and notifies listeners.
func (s *Service) mutate(ctx context.Context, op string, fn func(*vocab.List) (string, map[string]any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, data, err := fn(s.list)
	s.metrics.ObserveOp(op, err)
	if err != nil {
		return err
	}
	s.metrics.SetSize(s.list.Len(), s.list.WordCount())

	if s.autosave && s.path != "" {
		if _, saveErr := s.saveLocked(ctx, s.path, ""); saveErr != nil {
			s.logger.Warn("autosave failed", slog.String("op", op), slog.String("path", s.path),
				slog.String("error", saveErr.Error()))
		}
	}
	s.notify(kind, data)
	return nil
}

func (s *Service) notify(kind string, data map[string]any) {
	if s.onChange != nil {
		s.onChange(kind, data)
	}
}

func detail(pos int, t *vocab.Topic) *models.TopicDetail {
	return &models.TopicDetail{Position: pos, Name: t.Name, Words: t.Words()}
}
