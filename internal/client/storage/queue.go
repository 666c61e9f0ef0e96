package storage

import (
	"context"

	"github.com/iudanet/finkeeper/internal/models"
)


// QueueStorage defines interface for the local mutation queue.
// Entries are enqueued by local-mutation hooks, marked synced after a
// successful push, and removed only when the matching MergeResult is applied.
type QueueStorage interface {
	// Enqueue appends a pending mutation to the queue
	Enqueue(ctx context.Context, entry *models.QueueEntry) error

	// GetPending returns all entries with synced=false, oldest first
	GetPending(ctx context.Context) ([]*models.QueueEntry, error)

	// MarkSynced sets synced=true on the given entries after a push
	MarkSynced(ctx context.Context, ids []string) error

	// Remove deletes an entry once its MergeResult has been applied.
	// Removing a missing entry is not an error (duplicate delivery).
	Remove(ctx context.Context, id string) error

	// QueueSize returns the number of entries still in the queue
	QueueSize(ctx context.Context) (int, error)
}
