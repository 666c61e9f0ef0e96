package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

// AppendLog appends one entry to the audit trail.
// Ключом служит монотонная последовательность bucket, что дает
// хронологический порядок обхода без дополнительных индексов.
func (s *Storage) AppendLog(ctx context.Context, entry *models.SyncLogEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSyncLog)
		if bucket == nil {
			return fmt.Errorf("sync log bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to append log entry: %w", err)
		}

		return nil
	})
}

// GetRecentLogs returns up to limit most recent entries, newest first
func (s *Storage) GetRecentLogs(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.SyncLogEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSyncLog)
		if bucket == nil {
			return nil
		}

		// Идем с конца: последовательные ключи растут хронологически
		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(entries) < limit; k, v = cursor.Prev() {
			var entry models.SyncLogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal log entry: %w", err)
			}
			entries = append(entries, &entry)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent logs: %w", err)
	}

	return entries, nil
}
