package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusAfterFailure(t *testing.T) {
	status, reason := StatusAfterFailure(1)
	assert.Equal(t, StatusPending, status)
	assert.Empty(t, reason)

	status, reason = StatusAfterFailure(MaxRetries - 1)
	assert.Equal(t, StatusPending, status)
	assert.Empty(t, reason)

	status, reason = StatusAfterFailure(MaxRetries)
	assert.Equal(t, StatusExhausted, status)
	assert.Equal(t, ExhaustedReason, reason)

	status, _ = StatusAfterFailure(MaxRetries + 1)
	assert.Equal(t, StatusExhausted, status)
}

func TestNowLiteralDropsSecondsAndZone(t *testing.T) {
	got := NowLiteral()
	assert.Equal(t, time.UTC, got.Location())
	assert.Zero(t, got.Second())
	assert.Zero(t, got.Nanosecond())
}
