package markup

import (
	"sort"
	"strings"
)

// lineIndex maps byte offsets to 1-based lines and columns.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{src: src, starts: starts}
}

// position returns the 1-based line and column of a byte offset.
func (l *lineIndex) position(offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.src) {
		offset = len(l.src)
	}
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	return i + 1, offset - l.starts[i] + 1
}

// text returns the trimmed source text of a 1-based line.
func (l *lineIndex) text(line int) string {
	if line < 1 || line > len(l.starts) {
		return ""
	}
	start := l.starts[line-1]
	end := len(l.src)
	if line < len(l.starts) {
		end = l.starts[line] - 1
	}
	return strings.TrimSpace(string(l.src[start:end]))
}

// LineText returns the trimmed text of a 1-based line of source.
func LineText(source []byte, line int) string {
	return newLineIndex(source).text(line)
}
