package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	rl := newRateLimiter(2)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	clock = clock.Add(30 * time.Second)
	assert.False(t, rl.allow())

	clock = clock.Add(31 * time.Second)
	assert.True(t, rl.allow())
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, rl.allow())
	}

	var nilLimiter *rateLimiter
	assert.True(t, nilLimiter.allow())
}
