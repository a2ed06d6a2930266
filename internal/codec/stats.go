package codec

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/starford/vocab/internal/vocab"
)

// Stats summarizes a raw vocabulary file for logging.
type Stats struct {
	Lines  int
	Blank  int
	Topics int
	Words  int
}

// Inspect counts lines by kind without validating them.
func Inspect(data []byte) Stats {
	var st Stats
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		st.Lines++
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, vocab.Marker):
			st.Topics++
		case strings.TrimSpace(line) == "":
			st.Blank++
		default:
			st.Words++
		}
	}
	return st
}
