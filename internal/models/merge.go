package models

// MergeStatus результат сравнения входящего изменения с состоянием мастера
type MergeStatus string

const (
	MergeCreated             MergeStatus = "CREATED"
	MergeUpdated             MergeStatus = "UPDATED"
	MergeDeleted             MergeStatus = "DELETED"
	MergeConflictMaster      MergeStatus = "CONFLICT_MASTER"
	MergeConflictEqualMaster MergeStatus = "CONFLICT_EQUAL_MASTER"
	MergeRejectedFutureTS    MergeStatus = "REJECTED_FUTURE_TIMESTAMP"
	MergeNotFound            MergeStatus = "NOT_FOUND"
	MergeError               MergeStatus = "ERROR"
)

// IsConflict возвращает true для статусов, при которых победила версия мастера.
func (s MergeStatus) IsConflict() bool {
	return s == MergeConflictMaster || s == MergeConflictEqualMaster
}

// MergeResult описывает вердикт мастера по одному изменению.
// Производится mergeChange на мастере, потребляется applyMergeResult
// на любом устройстве (из SYNC_RESPONSE или bootstrap-батча).
type MergeResult struct {
	Winner    *Record     `json:"winner,omitempty"` // версия-победитель (для конфликтов и upsert)
	SyncID    string      `json:"sync_id,omitempty"`
	RecordID  string      `json:"record_id"`
	StoreName string      `json:"store_name"`
	Status    MergeStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
}
