package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/models"
)

func testMessage(recipientID, senderID, payload string, createdAt time.Time) *models.StoredMessage {
	return &models.StoredMessage{
		MessageID:   uuid.New().String(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Payload:     payload,
		CreatedAt:   createdAt,
	}
}

func TestMessageStorage_EnqueueAndDrain(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.EnqueueMessage(ctx, testMessage("dev-a", "dev-b", "first", base)))
	require.NoError(t, s.EnqueueMessage(ctx, testMessage("dev-a", "dev-b", "second", base.Add(time.Second))))
	require.NoError(t, s.EnqueueMessage(ctx, testMessage("dev-c", "dev-b", "other mailbox", base)))

	messages, err := s.DrainMessages(ctx, "dev-a")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Порядок поступления сохраняется
	assert.Equal(t, "first", messages[0].Payload)
	assert.Equal(t, "second", messages[1].Payload)
	assert.Equal(t, "dev-b", messages[0].SenderID)

	// Повторный drain - ящик пуст
	messages, err = s.DrainMessages(ctx, "dev-a")
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Чужой ящик не затронут
	count, err := s.CountPending(ctx, "dev-c")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMessageStorage_DrainEmptyMailbox(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	messages, err := s.DrainMessages(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestMessageStorage_CountPending(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	count, err := s.CountPending(ctx, "dev-a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	now := time.Now().UTC()
	require.NoError(t, s.EnqueueMessage(ctx, testMessage("dev-a", "dev-b", "one", now)))
	require.NoError(t, s.EnqueueMessage(ctx, testMessage("dev-a", "dev-b", "two", now)))

	count, err = s.CountPending(ctx, "dev-a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
