package markup

import "bytes"

// tagLocator recovers tag positions for the streaming backend. It keeps a cursor
// into the source that only moves forward, so repeated tag names resolve to
// distinct increasing offsets.
type tagLocator struct {
	lower  []byte
	cursor int
}

func newTagLocator(src []byte) *tagLocator {
	lower := make([]byte, len(src))
	for i, b := range src {
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		lower[i] = b
	}
	return &tagLocator{lower: lower}
}

// seek moves the cursor forward to offset. Backward moves are ignored.
func (l *tagLocator) seek(offset int) {
	if offset > l.cursor && offset <= len(l.lower) {
		l.cursor = offset
	}
}

// next finds "<name" followed by whitespace, '>' or '/' at or after the cursor and
// advances the cursor past it. When nothing matches the cursor is returned unchanged.
func (l *tagLocator) next(name string) (int, bool) {
	needle := append([]byte{'<'}, []byte(name)...)
	from := l.cursor
	for from <= len(l.lower) {
		i := bytes.Index(l.lower[from:], needle)
		if i < 0 {
			break
		}
		at := from + i
		end := at + len(needle)
		if end == len(l.lower) || isTagNameEnd(l.lower[end]) {
			l.cursor = end
			return at, true
		}
		from = at + 1
	}
	return l.cursor, false
}

func isTagNameEnd(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '>', '/':
		return true
	}
	return false
}
