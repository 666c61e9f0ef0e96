package sync

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for attempt := 0; attempt < 12; attempt++ {
		expected := BaseBackoff
		for i := 0; i < attempt; i++ {
			expected *= 2
			if expected >= MaxBackoff {
				expected = MaxBackoff
				break
			}
		}

		for i := 0; i < 100; i++ {
			delay := backoffDelay(attempt, rng)
			assert.GreaterOrEqual(t, delay, expected/2, "attempt %d", attempt)
			assert.LessOrEqual(t, delay, expected, "attempt %d", attempt)
		}
	}
}

func TestBackoffDelayCappedAtMax(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	// Далекие попытки упираются в потолок
	for i := 0; i < 100; i++ {
		delay := backoffDelay(100, rng)
		assert.GreaterOrEqual(t, delay, MaxBackoff/2)
		assert.LessOrEqual(t, delay, MaxBackoff)
	}
}

func TestSyncStateTransitions(t *testing.T) {
	now := time.Unix(1700000000, 0)

	state := idleState()
	assert.Equal(t, modeIdle, state.mode)
	assert.False(t, state.rateLimitActive(now))

	state = state.nextBackoff()
	assert.Equal(t, modeBackoff, state.mode)
	assert.Equal(t, 0, state.attempt)

	state = state.nextBackoff()
	assert.Equal(t, 1, state.attempt)

	state = rateLimited(now.Add(time.Minute))
	assert.Equal(t, modeRateLimited, state.mode)
	assert.True(t, state.rateLimitActive(now))
	assert.False(t, state.rateLimitActive(now.Add(2*time.Minute)))

	// Cooldown сбрасывает счетчик попыток
	assert.Equal(t, 0, state.attempt)
}
