package models

import "time"

// Operation тип локальной мутации в очереди синхронизации
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// QueueEntry представляет локальную мутацию, ожидающую подтверждения мастером.
// Запись удаляется из очереди только после применения соответствующего
// MergeResult (см. sync.applyMergeResult) - до этого она лишь помечается
// флагом Synced после успешной отправки.
type QueueEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Data      *Record   `json:"data"` // полный снимок записи на момент мутации
	ID        string    `json:"id"`   // sync_id (UUID)
	StoreName string    `json:"store_name"`
	RecordID  string    `json:"record_id"`
	Operation Operation `json:"operation"`
	Synced    bool      `json:"synced"`
}
