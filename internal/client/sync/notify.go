package sync

import (
	stdsync "sync"
	"time"

	"github.com/iudanet/finkeeper/internal/models"
)

// DataChange уведомление об изменении записи после применения MergeResult.
// Потребляется внешним слоем (обновление дашборда).
type DataChange struct {
	Store    string
	RecordID string
	Status   models.MergeStatus
}

// BootstrapEvent тип события прогресса начальной репликации
type BootstrapEvent string

const (
	BootstrapCollectionCleared BootstrapEvent = "collection_cleared"
	BootstrapStageStarted      BootstrapEvent = "stage_started"
	BootstrapBatchApplied      BootstrapEvent = "batch_applied"
	BootstrapStageCompleted    BootstrapEvent = "stage_completed"
	BootstrapFinished          BootstrapEvent = "finished"
	BootstrapFailed            BootstrapEvent = "failed"
)

// BootstrapProgress уведомление о ходе начальной репликации
type BootstrapProgress struct {
	Event          BootstrapEvent
	Stage          models.BootstrapStage
	Collection     string
	Error          string
	BatchesApplied int
	TotalBatches   int
	RecordsApplied int
}

// RateLimitEvent уведомление о входе в cooldown
type RateLimitEvent struct {
	Until time.Time
}

// notifier рассылает уведомления подписчикам движка.
// Заменяет DOM-события оригинала: движок не знает о конкретной шине UI.
type notifier struct {
	dataChanged       []func(DataChange)
	bootstrapProgress []func(BootstrapProgress)
	rateLimited       []func(RateLimitEvent)
	mu                stdsync.RWMutex
}

// OnDataChanged регистрирует подписчика изменений записей
func (n *notifier) OnDataChanged(fn func(DataChange)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dataChanged = append(n.dataChanged, fn)
}

// OnBootstrapProgress регистрирует подписчика прогресса bootstrap
func (n *notifier) OnBootstrapProgress(fn func(BootstrapProgress)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bootstrapProgress = append(n.bootstrapProgress, fn)
}

// OnRateLimited регистрирует подписчика событий rate limit
func (n *notifier) OnRateLimited(fn func(RateLimitEvent)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rateLimited = append(n.rateLimited, fn)
}

func (n *notifier) emitDataChanged(event DataChange) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, fn := range n.dataChanged {
		fn(event)
	}
}

func (n *notifier) emitBootstrapProgress(event BootstrapProgress) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, fn := range n.bootstrapProgress {
		fn(event)
	}
}

func (n *notifier) emitRateLimited(event RateLimitEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, fn := range n.rateLimited {
		fn(event)
	}
}
