package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/finkeeper/internal/models"
)

// EnqueueMessage appends an encrypted payload to the recipient's mailbox
func (s *Storage) EnqueueMessage(ctx context.Context, msg *models.StoredMessage) error {
	query := `
		INSERT INTO messages (message_id, recipient_id, sender_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.MessageID,
		msg.RecipientID,
		msg.SenderID,
		msg.Payload,
		msg.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	return nil
}

// DrainMessages atomically removes and returns the recipient's mailbox
// contents in arrival order. Returns empty slice if the mailbox is empty.
func (s *Storage) DrainMessages(ctx context.Context, recipientID string) ([]*models.StoredMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT message_id, recipient_id, sender_id, payload, created_at
		FROM messages
		WHERE recipient_id = ?
		ORDER BY created_at ASC, message_id ASC
	`

	rows, err := tx.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	messages := make([]*models.StoredMessage, 0)
	for rows.Next() {
		msg := &models.StoredMessage{}
		var createdAt int64

		if err := rows.Scan(&msg.MessageID, &msg.RecipientID, &msg.SenderID, &msg.Payload, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.CreatedAt = time.UnixMilli(createdAt).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	rows.Close()

	if len(messages) == 0 {
		return messages, nil
	}

	// Удаляем выданные сообщения в той же транзакции
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE recipient_id = ?`, recipientID); err != nil {
		return nil, fmt.Errorf("failed to delete drained messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit drain: %w", err)
	}

	return messages, nil
}

// CountPending returns the number of undelivered messages for a recipient
func (s *Storage) CountPending(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = ?`, recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending messages: %w", err)
	}

	return count, nil
}
