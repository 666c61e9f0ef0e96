package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/models"
)

func queueEntry(id string, createdAt time.Time) *models.QueueEntry {
	return &models.QueueEntry{
		ID:        id,
		StoreName: models.CollectionMovements,
		RecordID:  "rec-" + id,
		Operation: models.OperationCreate,
		Data:      &models.Record{ID: "rec-" + id},
		CreatedAt: createdAt,
	}
}

func TestQueue_EnqueueAndGetPending(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, s.Enqueue(ctx, queueEntry("q2", base.Add(time.Second))))
	require.NoError(t, s.Enqueue(ctx, queueEntry("q1", base)))

	pending, err := s.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Старые мутации отправляются первыми
	assert.Equal(t, "q1", pending[0].ID)
	assert.Equal(t, "q2", pending[1].ID)
}

func TestQueue_MarkSynced(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Enqueue(ctx, queueEntry("q1", time.Now())))
	require.NoError(t, s.MarkSynced(ctx, []string{"q1", "missing"}))

	// Помеченная запись исчезает из pending, но остается в очереди
	pending, err := s.GetPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	size, err := s.QueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestQueue_Remove(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Enqueue(ctx, queueEntry("q1", time.Now())))
	require.NoError(t, s.Remove(ctx, "q1"))

	size, err := s.QueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	// Повторное удаление не ошибка (дублированная доставка результата)
	require.NoError(t, s.Remove(ctx, "q1"))
}
