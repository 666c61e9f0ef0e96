package sync

import "time"

// stateMode режим движка между tick-циклами
type stateMode int

const (
	// modeIdle движок готов к следующему tick
	modeIdle stateMode = iota
	// modeRateLimited сервер запретил запросы до истечения cooldown
	modeRateLimited
	// modeBackoff предыдущий tick завершился повторяемой ошибкой
	modeBackoff
)

// syncState единое явное состояние retry/rate-limit движка.
// Заменяет россыпь булевых флагов и timestamp-полей: недопустимые
// комбинации (backoff одновременно с rate limit) непредставимы.
type syncState struct {
	until   time.Time // граница cooldown, только для modeRateLimited
	mode    stateMode
	attempt int // количество повторяемых сбоев подряд, только для modeBackoff
}

// idleState возвращает исходное состояние
func idleState() syncState {
	return syncState{mode: modeIdle}
}

// rateLimited переводит движок в cooldown до указанного момента.
// Счетчик попыток сбрасывается: после истечения cooldown начинаем заново.
func rateLimited(until time.Time) syncState {
	return syncState{mode: modeRateLimited, until: until}
}

// nextBackoff увеличивает счетчик повторяемых сбоев
func (s syncState) nextBackoff() syncState {
	attempt := 0
	if s.mode == modeBackoff {
		attempt = s.attempt + 1
	}
	return syncState{mode: modeBackoff, attempt: attempt}
}

// rateLimitActive возвращает true, если cooldown еще не истек
func (s syncState) rateLimitActive(now time.Time) bool {
	return s.mode == modeRateLimited && now.Before(s.until)
}
