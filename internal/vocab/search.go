package vocab

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Hit is one topic's match for a word search.
type Hit struct {
	Position int    `json:"position"`
	Topic    string `json:"topic"`
	Word     string `json:"word"`
}

// FindWord scans every topic in order and reports at most one hit per topic:
// the first case-insensitive match. The scan always continues with the next
// topic. Word carries the stored casing.
func FindWord(l *List, word string) []Hit {
	hits := []Hit{}
	for pos, t := range l.All() {
		i, ok := t.words.Find(word)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Position: pos, Topic: t.Name, Word: t.words.items[i]})
	}
	return hits
}

// WordsStartingWith collects every word, across all topics, whose first
// letter equals letter ignoring case. The result is sorted ignoring case;
// duplicates found in different topics are all kept.
func WordsStartingWith(l *List, letter rune) []string {
	out := []string{}
	for _, t := range l.All() {
		for _, w := range t.words.items {
			if !startsWithFold(w, letter) {
				continue
			}
			out = insertSorted(out, w)
		}
	}
	return out
}

// CompareFold orders two words ignoring case.
func CompareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// insertSorted places w before the first entry that does not sort below it.
func insertSorted(sorted []string, w string) []string {
	i := 0
	for i < len(sorted) && CompareFold(sorted[i], w) < 0 {
		i++
	}
	return slices.Insert(sorted, i, w)
}

func startsWithFold(w string, letter rune) bool {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return false
	}
	return strings.EqualFold(string(r), string(letter))
}
