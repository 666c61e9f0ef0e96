package storage

import (
	"context"
	"time"

	"github.com/iudanet/finkeeper/internal/models"
)

// DeviceStorage defines interface for device registry persistence
type DeviceStorage interface {
	// CreateDevice registers a new device
	// Returns ErrDeviceAlreadyExists if device_id is taken
	CreateDevice(ctx context.Context, device *models.Device) error

	// GetDevice retrieves device by id
	// Returns ErrDeviceNotFound if device doesn't exist
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// GetClusterDevices retrieves all devices that share a master,
	// the master itself included. Returns empty slice for unknown cluster.
	GetClusterDevices(ctx context.Context, masterID string) ([]*models.Device, error)

	// UpdateLastSeen updates the device liveness timestamp
	// Returns ErrDeviceNotFound if device doesn't exist
	UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error
}
