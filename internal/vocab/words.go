// Package vocab implements the in-memory vocabulary model: ordered topics,
// each holding an ordered sequence of case-insensitively distinct words.
//
// Nothing in this package locks. A List and the Topics it holds assume one
// caller at a time; hosts that serve concurrent callers serialize access.
package vocab

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/vocab/internal/apperr"
)

// Marker starts a topic record in the text format. Words added or changed
// through a Topic may not begin with it.
const Marker = "#"

// Words is the ordered word sequence of one topic. It does not enforce
// uniqueness; Topic.AddWord does.
type Words struct {
	items []string
}

// Append adds word at the end of the sequence.
func (w *Words) Append(word string) error {
	word, err := cleanWord(word)
	if err != nil {
		return err
	}
	w.items = append(w.items, word)
	return nil
}

// appendLoaded is Append for words read from a file, where a word may begin
// with the topic marker as long as the marker was not in the first column.
func (w *Words) appendLoaded(word string) error {
	word, err := cleanText("word", word)
	if err != nil {
		return err
	}
	w.items = append(w.items, word)
	return nil
}

// Find returns the 0-based index of the first case-insensitive match.
func (w *Words) Find(word string) (int, bool) {
	word = strings.TrimSpace(word)
	for i, item := range w.items {
		if strings.EqualFold(item, word) {
			return i, true
		}
	}
	return -1, false
}

// RemoveFirstMatch deletes the first case-insensitive match and keeps the
// order of the remaining words.
func (w *Words) RemoveFirstMatch(word string) bool {
	i, ok := w.Find(word)
	if !ok {
		return false
	}
	w.items = slices.Delete(w.items, i, i+1)
	return true
}

// ReplaceFirstMatch stores newWord in place of the first case-insensitive
// match of oldWord and reports whether a match was found. newWord is
// validated like Append but not checked against the other entries.
func (w *Words) ReplaceFirstMatch(oldWord, newWord string) (bool, error) {
	newWord, err := cleanWord(newWord)
	if err != nil {
		return false, err
	}
	i, ok := w.Find(oldWord)
	if !ok {
		return false, nil
	}
	w.items[i] = newWord
	return true, nil
}

// List returns a copy of the words in their current order.
func (w *Words) List() []string {
	out := make([]string, len(w.items))
	copy(out, w.items)
	return out
}

// Len returns the number of words.
func (w *Words) Len() int { return len(w.items) }

func cleanWord(word string) (string, error) {
	word, err := cleanText("word", word)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(word, Marker) {
		return "", fmt.Errorf("%w: word %q starts with topic marker %q", apperr.ErrInvalidArgument, word, Marker)
	}
	return word, nil
}

// cleanText trims s and rejects blank values and embedded line breaks, which
// the line-oriented file format cannot represent.
func cleanText(kind, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is empty", apperr.ErrInvalidArgument, kind)
	}
	if strings.ContainsAny(s, "\r\n") {
		return "", fmt.Errorf("%w: %s contains a line break", apperr.ErrInvalidArgument, kind)
	}
	return s, nil
}
