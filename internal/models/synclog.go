package models

import "time"

// SyncLogType тип записи журнала синхронизации
type SyncLogType string

const (
	SyncLogSuccess SyncLogType = "SYNC_SUCCESS"
	SyncLogError   SyncLogType = "SYNC_ERROR"
)

// SyncLogEntry одна запись append-only журнала синхронизации.
// Журнал ведется для каждого tick независимо от исхода;
// ошибки записи журнала никогда не прерывают синхронизацию.
type SyncLogEntry struct {
	Timestamp   time.Time     `json:"timestamp"`
	ID          string        `json:"id"`
	Type        SyncLogType   `json:"type"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	ItemsPushed int           `json:"items_pushed"`
	ItemsPulled int           `json:"items_pulled"`
	Conflicts   int           `json:"conflicts"`
}
