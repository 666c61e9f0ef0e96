package sync

import (
	"context"
	"time"
)

// Clock абстрагирует время и таймеры движка синхронизации.
// Retry-бэкофф и bootstrap-поллинг становятся детерминированными в тестах:
// фейковые часы продвигаются вручную вместо реальных задержек.
type Clock interface {
	// Now возвращает текущее время
	Now() time.Time

	// Sleep блокируется на d или до отмены контекста
	Sleep(ctx context.Context, d time.Duration) error

	// AfterFunc вызывает fn через d; возвращаемая функция отменяет таймер
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// systemClock реализует Clock поверх пакета time
type systemClock struct{}

// NewSystemClock возвращает Clock на основе системного времени
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (systemClock) AfterFunc(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}
