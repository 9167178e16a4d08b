package repository

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateReasonCountsRunes(t *testing.T) {
	assert.Equal(t, "curto", truncateReason("curto"))

	long := strings.Repeat("x", 300)
	assert.Equal(t, strings.Repeat("x", 255), truncateReason(long))

	// must never split a multi-byte rune mid-sequence
	accented := strings.Repeat("ã", 300)
	got := truncateReason(accented)
	assert.Equal(t, 255, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ã", 255), got)
}
