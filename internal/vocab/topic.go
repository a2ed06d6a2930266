package vocab

import (
	"fmt"

	"github.com/starford/vocab/internal/apperr"
)

// Topic is a named group of words.
type Topic struct {
	Name  string
	words Words
}

// NewTopic creates a topic with the given initial words. Initial words are
// appended as given, without a duplicate check.
func NewTopic(name string, words ...string) (*Topic, error) {
	name, err := cleanText("topic name", name)
	if err != nil {
		return nil, err
	}
	t := &Topic{Name: name}
	for _, w := range words {
		if err := t.words.Append(w); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddWord appends word unless the topic already holds it (case-insensitive).
func (t *Topic) AddWord(word string) error {
	if _, ok := t.words.Find(word); ok {
		return fmt.Errorf("%w: %q is already listed in %q", apperr.ErrDuplicateWord, word, t.Name)
	}
	return t.words.Append(word)
}

// RemoveWord deletes the first case-insensitive match of word.
func (t *Topic) RemoveWord(word string) error {
	if !t.words.RemoveFirstMatch(word) {
		return fmt.Errorf("%w: %q in %q", apperr.ErrWordNotFound, word, t.Name)
	}
	return nil
}

// ChangeWord replaces the first case-insensitive match of oldWord with newWord.
func (t *Topic) ChangeWord(oldWord, newWord string) error {
	ok, err := t.words.ReplaceFirstMatch(oldWord, newWord)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q in %q", apperr.ErrWordNotFound, oldWord, t.Name)
	}
	return nil
}

// HasWord reports whether the topic holds word (case-insensitive).
func (t *Topic) HasWord(word string) bool {
	_, ok := t.words.Find(word)
	return ok
}

// Words returns the topic's words in order. Display numbering is the
// caller's concern.
func (t *Topic) Words() []string { return t.words.List() }

// Len returns the number of words in the topic.
func (t *Topic) Len() int { return t.words.Len() }

// AppendWord appends word without a duplicate check. Decoders use it to
// trust what the file holds, so a word such as "#tag" is accepted here while
// AddWord and ChangeWord refuse it.
func (t *Topic) AppendWord(word string) error { return t.words.appendLoaded(word) }
