package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

// Enqueue appends a pending mutation to the queue
func (s *Storage) Enqueue(ctx context.Context, entry *models.QueueEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if entry.ID == "" {
		return fmt.Errorf("queue entry id cannot be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		if err := bucket.Put([]byte(entry.ID), data); err != nil {
			return fmt.Errorf("failed to save queue entry: %w", err)
		}

		return nil
	})
}

// GetPending returns all entries with synced=false, oldest first
func (s *Storage) GetPending(ctx context.Context) ([]*models.QueueEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.QueueEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var entry models.QueueEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal queue entry: %w", err)
			}
			if !entry.Synced {
				entries = append(entries, &entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pending entries: %w", err)
	}

	// Мутации отправляются в порядке их создания
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// MarkSynced sets synced=true on the given entries after a push
func (s *Storage) MarkSynced(ctx context.Context, ids []string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		for _, id := range ids {
			data := bucket.Get([]byte(id))
			if data == nil {
				// Запись уже подтверждена и удалена - не ошибка
				continue
			}

			var entry models.QueueEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal queue entry: %w", err)
			}

			entry.Synced = true

			updated, err := json.Marshal(&entry)
			if err != nil {
				return fmt.Errorf("failed to marshal queue entry: %w", err)
			}

			if err := bucket.Put([]byte(id), updated); err != nil {
				return fmt.Errorf("failed to update queue entry: %w", err)
			}
		}

		return nil
	})
}

// Remove deletes an entry once its MergeResult has been applied
func (s *Storage) Remove(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return nil
		}
		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to remove queue entry: %w", err)
		}
		return nil
	})
}

// QueueSize returns the number of entries still in the queue
func (s *Storage) QueueSize(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}

	return count, nil
}
