package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

const keySyncConfig = "sync_config"

// SaveConfig stores the device sync configuration
func (s *Storage) SaveConfig(ctx context.Context, cfg *models.SyncConfig) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConfig)
		if bucket == nil {
			return fmt.Errorf("config bucket not found")
		}

		if err := bucket.Put([]byte(keySyncConfig), data); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		return nil
	})
}

// GetConfig retrieves the device sync configuration
// Returns ErrConfigNotFound if the device has not been paired yet
func (s *Storage) GetConfig(ctx context.Context) (*models.SyncConfig, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var cfg *models.SyncConfig

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConfig)
		if bucket == nil {
			return storage.ErrConfigNotFound
		}

		data := bucket.Get([]byte(keySyncConfig))
		if data == nil {
			return storage.ErrConfigNotFound
		}

		cfg = &models.SyncConfig{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
