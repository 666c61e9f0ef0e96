package sync

import (
	"math/rand"
	"time"
)

const (
	// BaseBackoff начальная задержка повторной попытки
	BaseBackoff = 2000 * time.Millisecond
	// MaxBackoff потолок экспоненциального роста задержки
	MaxBackoff = 60000 * time.Millisecond
)

// backoffDelay возвращает задержку перед повтором для попытки attempt.
// Экспоненциальный рост clamp(BASE*2^attempt, MAX) с jitter:
// итоговая задержка равномерно распределена в [delay/2, delay].
// rng подменяется в тестах для детерминизма.
func backoffDelay(attempt int, rng *rand.Rand) time.Duration {
	delay := BaseBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= MaxBackoff {
			delay = MaxBackoff
			break
		}
	}

	half := delay / 2
	jittered := half + time.Duration(rng.Int63n(int64(half)+1))

	return jittered
}
