// Package codec reads and writes the line-oriented vocabulary file format:
//
//	# Animals
//	Cat
//	Dog
//	# Colors
//	Red
//
// A line starting with "#" opens a topic; the non-blank lines that follow are
// its words. Blank lines are skipped on read and never written. A word that
// itself begins with "#" is written indented by one space.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/vocab"
)

// maxLineSize bounds a single line; longer lines are malformed input.
const maxLineSize = 1 << 20

// Decode builds a topic list from r. Either the whole stream decodes or no
// list is returned.
func Decode(r io.Reader) (*vocab.List, error) {
	list := vocab.NewList()
	var current *vocab.Topic

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if strings.HasPrefix(line, vocab.Marker) {
			name := strings.TrimSpace(strings.TrimPrefix(line, vocab.Marker))
			t, err := vocab.NewTopic(name)
			if err != nil {
				return nil, lineError(lineNo, err)
			}
			list.Append(t)
			current = t
			continue
		}

		word := strings.TrimSpace(line)
		if word == "" {
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: line %d: word %q appears before any topic marker",
				apperr.ErrMalformedInput, lineNo, word)
		}
		if err := current.AppendWord(word); err != nil {
			return nil, lineError(lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read: %w", apperr.ErrMalformedInput, err)
	}
	return list, nil
}

// Unmarshal decodes data.
func Unmarshal(data []byte) (*vocab.List, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes l to w: one "# name" line per topic followed by one line per
// word.
func Encode(w io.Writer, l *vocab.List) error {
	bw := bufio.NewWriter(w)
	for _, t := range l.All() {
		if _, err := fmt.Fprintf(bw, "%s %s\n", vocab.Marker, t.Name); err != nil {
			return writeError(err)
		}
		for _, word := range t.Words() {
			if strings.HasPrefix(word, vocab.Marker) {
				// Indented so it reads back as a word, not a topic.
				word = " " + word
			}
			if _, err := bw.WriteString(word + "\n"); err != nil {
				return writeError(err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return writeError(err)
	}
	return nil
}

// Marshal encodes l into a byte slice.
func Marshal(l *vocab.List) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer only fail on allocation, which panics instead.
	_ = Encode(&buf, l)
	return buf.Bytes()
}

func lineError(lineNo int, err error) error {
	if errors.Is(err, apperr.ErrMalformedInput) {
		return err
	}
	return fmt.Errorf("%w: line %d: %w", apperr.ErrMalformedInput, lineNo, err)
}

func writeError(err error) error {
	return fmt.Errorf("%w: write: %w", apperr.ErrMalformedInput, err)
}
