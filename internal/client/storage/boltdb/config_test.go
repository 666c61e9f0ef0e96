package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

func TestConfig_SaveAndGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cfg := &models.SyncConfig{
		DeviceID:      "device-1",
		DeviceToken:   "token",
		Role:          models.RoleSlave,
		MasterID:      "device-master",
		EncryptionKey: "a2V5",
		APIURL:        "http://localhost:8080",
		SchemaVersion: models.SchemaVersion,
	}

	require.NoError(t, s.SaveConfig(ctx, cfg))

	got, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetConfig(context.Background())
	assert.ErrorIs(t, err, storage.ErrConfigNotFound)
}

func TestSyncLog_AppendAndGetRecent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := &models.SyncLogEntry{
			ID:          string(rune('a' + i)),
			Type:        models.SyncLogSuccess,
			ItemsPushed: i,
			Timestamp:   time.Now(),
		}
		require.NoError(t, s.AppendLog(ctx, entry))
	}

	logs, err := s.GetRecentLogs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Новые записи первыми
	assert.Equal(t, 4, logs[0].ItemsPushed)
	assert.Equal(t, 3, logs[1].ItemsPushed)
	assert.Equal(t, 2, logs[2].ItemsPushed)
}

func TestSyncLog_EmptyLog(t *testing.T) {
	s := newTestStorage(t)

	logs, err := s.GetRecentLogs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
