package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelMatchPatternPlainID(t *testing.T) {
	assert.Equal(t, `*"room_id":"room-7"*`, cancelMatchPattern("room-7"))
}

func TestCancelMatchPatternEscapesGlobMeta(t *testing.T) {
	// An id made of glob metacharacters must stay scoped to its own
	// room; unescaped, "*" would match every member in the sorted set.
	assert.Equal(t, `*"room_id":"\*"*`, cancelMatchPattern("*"))
	assert.Equal(t, `*"room_id":"a\?b"*`, cancelMatchPattern("a?b"))
	assert.Equal(t, `*"room_id":"\[x\]"*`, cancelMatchPattern("[x]"))
	assert.Equal(t, `*"room_id":"a\^b"*`, cancelMatchPattern("a^b"))
}
