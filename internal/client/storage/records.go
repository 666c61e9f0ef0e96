package storage

import (
	"context"

	"github.com/iudanet/finkeeper/internal/models"
)


// RecordStore defines the keyed per-collection store the sync engine runs on.
// Domain records live in named collections; the engine only interprets the
// record envelope (id, updated_at, is_deleted, account_id, amount).
type RecordStore interface {
	// Get retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	Get(ctx context.Context, collection, id string) (*models.Record, error)

	// GetAll returns all records in a collection (including soft-deleted ones)
	GetAll(ctx context.Context, collection string) ([]*models.Record, error)

	// GetActive returns all non-deleted records in a collection
	GetActive(ctx context.Context, collection string) ([]*models.Record, error)

	// Put stores a record as-is, without touching updated_at
	Put(ctx context.Context, collection string, record *models.Record) error

	// PutWithMeta stores a record stamping updated_at with the current
	// wall clock; the stamp is guaranteed non-decreasing per device
	PutWithMeta(ctx context.Context, collection string, record *models.Record) error

	// Delete removes a record physically
	Delete(ctx context.Context, collection, id string) error

	// SoftDelete marks a record as deleted (tombstone) and stamps updated_at
	SoftDelete(ctx context.Context, collection, id string) error

	// Count returns the number of non-deleted records in a collection
	Count(ctx context.Context, collection string) (int, error)

	// Clear removes all records from a collection
	// Used for bootstrap replication
	Clear(ctx context.Context, collection string) error

	// Adjust applies a read-modify-write mutation to a single record
	// atomically with respect to all other record mutations.
	// Used for the denormalized account balance aggregate.
	Adjust(ctx context.Context, collection, id string, fn func(*models.Record) error) error
}
