package storage

import (
	"context"

	"github.com/iudanet/finkeeper/internal/models"
)

// MessageStorage defines interface for the store-and-forward mailbox
type MessageStorage interface {
	// EnqueueMessage appends an encrypted payload to the recipient's mailbox
	EnqueueMessage(ctx context.Context, msg *models.StoredMessage) error

	// DrainMessages atomically removes and returns the recipient's mailbox
	// contents in arrival order. Returns empty slice if the mailbox is empty.
	DrainMessages(ctx context.Context, recipientID string) ([]*models.StoredMessage, error)

	// CountPending returns the number of undelivered messages for a recipient
	CountPending(ctx context.Context, recipientID string) (int, error)
}
