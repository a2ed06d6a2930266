package vocab

import (
	"fmt"
	"iter"
	"slices"

	"github.com/starford/vocab/internal/apperr"
)

// List is the ordered topic sequence, addressed by 1-based position.
// The zero value is an empty list ready to use.
type List struct {
	topics []*Topic
}

// NewList returns an empty list.
func NewList() *List { return &List{} }

// Len returns the number of topics.
func (l *List) Len() int { return len(l.topics) }

// At returns the topic at pos.
func (l *List) At(pos int) (*Topic, error) {
	i, err := l.index(pos)
	if err != nil {
		return nil, err
	}
	return l.topics[i], nil
}

// First returns the first topic, or nil for an empty list.
func (l *List) First() *Topic {
	if len(l.topics) == 0 {
		return nil
	}
	return l.topics[0]
}

// Last returns the last topic, or nil for an empty list.
func (l *List) Last() *Topic {
	if len(l.topics) == 0 {
		return nil
	}
	return l.topics[len(l.topics)-1]
}

// InsertBefore places t immediately before the topic at pos; that topic and
// every later one move up by one position.
func (l *List) InsertBefore(pos int, t *Topic) error {
	i, err := l.index(pos)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: nil topic", apperr.ErrInvalidArgument)
	}
	l.topics = slices.Insert(l.topics, i, t)
	return nil
}

// InsertAfter places t immediately after the topic at pos.
func (l *List) InsertAfter(pos int, t *Topic) error {
	i, err := l.index(pos)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: nil topic", apperr.ErrInvalidArgument)
	}
	l.topics = slices.Insert(l.topics, i+1, t)
	return nil
}

// RemoveAt deletes the topic at pos and returns it. Its neighbours become
// adjacent.
func (l *List) RemoveAt(pos int) (*Topic, error) {
	i, err := l.index(pos)
	if err != nil {
		return nil, err
	}
	t := l.topics[i]
	l.topics = slices.Delete(l.topics, i, i+1)
	return t, nil
}

// Append adds t at the end. It is the bulk-load path and the only way to
// grow an empty list.
func (l *List) Append(t *Topic) {
	if t == nil {
		return
	}
	l.topics = append(l.topics, t)
}

// All yields (position, topic) pairs in order. Each call starts a fresh pass
// from the first topic.
func (l *List) All() iter.Seq2[int, *Topic] {
	return func(yield func(int, *Topic) bool) {
		for i, t := range l.topics {
			if !yield(i+1, t) {
				return
			}
		}
	}
}

// Names returns the topic names in order.
func (l *List) Names() []string {
	out := make([]string, 0, len(l.topics))
	for _, t := range l.topics {
		out = append(out, t.Name)
	}
	return out
}

// WordCount returns the number of words across all topics.
func (l *List) WordCount() int {
	n := 0
	for _, t := range l.topics {
		n += t.Len()
	}
	return n
}

func (l *List) index(pos int) (int, error) {
	if pos < 1 || pos > len(l.topics) {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", apperr.ErrOutOfRange, pos, len(l.topics))
	}
	return pos - 1, nil
}
