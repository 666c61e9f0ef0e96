package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/internal/relay/storage"
)

// CreateDevice registers a new device
// Returns ErrDeviceAlreadyExists if device_id is taken
func (s *Storage) CreateDevice(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (device_id, role, master_id, token_hash, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		device.DeviceID,
		string(device.Role),
		device.MasterID,
		device.TokenHash,
		device.CreatedAt.Unix(),
		device.LastSeen.Unix(),
	)

	if err != nil {
		// modernc.org/sqlite не экспортирует типизированные ошибки constraint violation
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint failed") {
			return storage.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetDevice retrieves device by id
// Returns ErrDeviceNotFound if device doesn't exist
func (s *Storage) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `
		SELECT device_id, role, master_id, token_hash, created_at, last_seen
		FROM devices
		WHERE device_id = ?
	`

	device, err := scanDevice(s.db.QueryRowContext(ctx, query, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// GetClusterDevices retrieves all devices that share a master,
// the master itself included. Returns empty slice for unknown cluster.
func (s *Storage) GetClusterDevices(ctx context.Context, masterID string) ([]*models.Device, error) {
	query := `
		SELECT device_id, role, master_id, token_hash, created_at, last_seen
		FROM devices
		WHERE master_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, masterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cluster devices: %w", err)
	}
	defer rows.Close()

	devices := make([]*models.Device, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	return devices, nil
}

// UpdateLastSeen updates the device liveness timestamp
// Returns ErrDeviceNotFound if device doesn't exist
func (s *Storage) UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error {
	query := `UPDATE devices SET last_seen = ? WHERE device_id = ?`

	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), deviceID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrDeviceNotFound
	}

	return nil
}

// scanner покрывает *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(row scanner) (*models.Device, error) {
	device := &models.Device{}
	var role string
	var createdAt, lastSeen int64

	err := row.Scan(
		&device.DeviceID,
		&role,
		&device.MasterID,
		&device.TokenHash,
		&createdAt,
		&lastSeen,
	)
	if err != nil {
		return nil, err
	}

	device.Role = models.DeviceRole(role)
	device.CreatedAt = time.Unix(createdAt, 0).UTC()
	device.LastSeen = time.Unix(lastSeen, 0).UTC()

	return device, nil
}
