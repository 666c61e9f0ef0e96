package storage

import (
	"context"

	"github.com/iudanet/finkeeper/internal/models"
)


// SyncLogStorage defines interface for the append-only sync audit trail.
// Failures of the log itself must never propagate into the sync cycle,
// so callers are expected to swallow errors from AppendLog.
type SyncLogStorage interface {
	// AppendLog appends one entry to the audit trail
	AppendLog(ctx context.Context, entry *models.SyncLogEntry) error

	// GetRecentLogs returns up to limit most recent entries, newest first
	GetRecentLogs(ctx context.Context, limit int) ([]*models.SyncLogEntry, error)
}
