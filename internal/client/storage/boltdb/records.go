package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

// Get retrieves a record by ID
func (s *Storage) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return nil, storage.ErrUnknownCollection
	}

	var record *models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		record = &models.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetAll returns all records in a collection (including soft-deleted ones)
func (s *Storage) GetAll(ctx context.Context, collection string) ([]*models.Record, error) {
	return s.getRecords(collection, false)
}

// GetActive returns all non-deleted records in a collection
func (s *Storage) GetActive(ctx context.Context, collection string) ([]*models.Record, error) {
	return s.getRecords(collection, true)
}

func (s *Storage) getRecords(collection string, skipDeleted bool) ([]*models.Record, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return nil, storage.ErrUnknownCollection
	}

	var records []*models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var record models.Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			if skipDeleted && record.Deleted {
				return nil
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	return records, nil
}

// Put stores a record as-is, without touching updated_at
func (s *Storage) Put(ctx context.Context, collection string, record *models.Record) error {
	return s.putRecord(collection, record, false)
}

// PutWithMeta stores a record stamping updated_at with the current wall clock.
// Штамп не убывает для одной записи даже при сдвиге часов назад.
func (s *Storage) PutWithMeta(ctx context.Context, collection string, record *models.Record) error {
	return s.putRecord(collection, record, true)
}

func (s *Storage) putRecord(collection string, record *models.Record, stamp bool) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return storage.ErrUnknownCollection
	}
	if record.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return storage.ErrUnknownCollection
		}

		if stamp {
			record.UpdatedAt = s.nextTimestamp(bucket, record.ID)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := bucket.Put([]byte(record.ID), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

// nextTimestamp возвращает неубывающий штамп updated_at для записи
func (s *Storage) nextTimestamp(bucket *bbolt.Bucket, id string) int64 {
	now := s.nowMillis()

	if data := bucket.Get([]byte(id)); data != nil {
		var existing models.Record
		if err := json.Unmarshal(data, &existing); err == nil && existing.UpdatedAt >= now {
			return existing.UpdatedAt + 1
		}
	}

	return now
}

// Delete removes a record physically
func (s *Storage) Delete(ctx context.Context, collection, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return storage.ErrUnknownCollection
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		return nil
	})
}

// SoftDelete marks a record as deleted (tombstone) and stamps updated_at
func (s *Storage) SoftDelete(ctx context.Context, collection, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return storage.ErrUnknownCollection
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		var record models.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		record.Deleted = true
		record.UpdatedAt = s.nextTimestamp(bucket, id)

		updated, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := bucket.Put([]byte(id), updated); err != nil {
			return fmt.Errorf("failed to save tombstone: %w", err)
		}

		return nil
	})
}

// Count returns the number of non-deleted records in a collection
func (s *Storage) Count(ctx context.Context, collection string) (int, error) {
	records, err := s.getRecords(collection, true)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Clear removes all records from a collection
func (s *Storage) Clear(ctx context.Context, collection string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return storage.ErrUnknownCollection
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(collection)); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(collection)); err != nil {
			return fmt.Errorf("failed to recreate collection: %w", err)
		}
		return nil
	})
}

// Adjust applies a read-modify-write mutation to a single record atomically.
// Вся мутация выполняется внутри одной bbolt-транзакции, что исключает
// lost update при конкурентных корректировках баланса.
func (s *Storage) Adjust(ctx context.Context, collection, id string, fn func(*models.Record) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if !isKnownCollection(collection) {
		return storage.ErrUnknownCollection
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		var record models.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		if err := fn(&record); err != nil {
			return err
		}

		updated, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := bucket.Put([]byte(id), updated); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}
