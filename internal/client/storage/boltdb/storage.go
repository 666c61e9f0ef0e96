package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finkeeper/internal/models"
)

var (
	// BoltDB bucket names
	bucketQueue   = []byte("sync_queue")
	bucketSyncLog = []byte("sync_log")
	bucketConfig  = []byte("config")
)

// Storage represents BoltDB storage implementation for a device.
// Один файл BoltDB хранит доменные коллекции, очередь синхронизации,
// журнал и конфигурацию устройства.
type Storage struct {
	db *bbolt.DB

	// nowMillis подменяется в тестах для детерминированных timestamp
	nowMillis func() int64
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{
		db:        db,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		// Bucket на каждую доменную коллекцию
		for _, collection := range knownCollections() {
			if _, err := tx.CreateBucketIfNotExists([]byte(collection)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", collection, err)
			}
		}

		for _, bucket := range [][]byte{bucketQueue, bucketSyncLog, bucketConfig} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", bucket, err)
			}
		}

		return nil
	})
}

// knownCollections возвращает все доменные коллекции устройства
func knownCollections() []string {
	return append(models.ReferenceCollections(), models.TransactionalCollections()...)
}

// isKnownCollection проверяет имя коллекции до обращения к bucket
func isKnownCollection(collection string) bool {
	for _, known := range knownCollections() {
		if known == collection {
			return true
		}
	}
	return false
}
