package storage

import (
	"context"

	"github.com/iudanet/finkeeper/internal/models"
)


// ConfigStorage defines interface for the per-device sync configuration.
// The configuration is written by the pairing flow and read at startup;
// it survives bootstrap replication (never cleared with domain collections).
type ConfigStorage interface {
	// SaveConfig stores the device sync configuration
	SaveConfig(ctx context.Context, cfg *models.SyncConfig) error

	// GetConfig retrieves the device sync configuration
	// Returns ErrConfigNotFound if the device has not been paired yet
	GetConfig(ctx context.Context) (*models.SyncConfig, error)
}
