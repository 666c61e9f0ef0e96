package api

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultRetryAfter применяется, когда relay вернул 429 без заголовка Retry-After
const DefaultRetryAfter = 900 * time.Second

// TransportError ошибка relay-сервера с HTTP-статусом.
// Движок синхронизации классифицирует ее по статусу:
// 429 - rate limit, прочие 4xx - неповторяемые, 5xx - повторяемые.
type TransportError struct {
	Message    string
	StatusCode int
	RetryAfter time.Duration // только для 429, иначе 0
}

// Error реализует интерфейс error
func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transport error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport error (%d)", e.StatusCode)
}

// IsRateLimited возвращает true для ответа 429 Too Many Requests
func (e *TransportError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable возвращает true для серверных ошибок (5xx)
func (e *TransportError) IsRetryable() bool {
	return e.StatusCode >= 500
}
