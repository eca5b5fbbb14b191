package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagLocatorAdvancesMonotonically(t *testing.T) {
	src := []byte("<a></a><abbr></abbr>\n<A href>")
	l := newTagLocator(src)

	first, ok := l.next("a")
	assert.True(t, ok)
	assert.Equal(t, 0, first)

	second, ok := l.next("a")
	assert.True(t, ok)
	assert.Equal(t, 21, second, "<abbr must not match <a")

	_, ok = l.next("a")
	assert.False(t, ok)
}

func TestTagLocatorSeekNeverMovesBack(t *testing.T) {
	l := newTagLocator([]byte("<p><p><p>"))
	l.seek(6)
	l.seek(2)

	at, ok := l.next("p")
	assert.True(t, ok)
	assert.Equal(t, 6, at)
}

func TestLineIndexPosition(t *testing.T) {
	idx := newLineIndex([]byte("ab\n  cd\r\nef"))

	line, col := idx.position(5)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
	assert.Equal(t, "cd", idx.text(2))
	assert.Equal(t, "ef", idx.text(3))
	assert.Equal(t, "", idx.text(4))
}
