package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"secretlink/models"
	"secretlink/store"
)

// SelectAll returns every message ordered by created_at ascending.
func (s *Store) SelectAll(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, content, created_at, is_read
		FROM messages
		ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}

// Insert persists a new encrypted message row. The store assigns id
// and created_at, then announces the row on the change feed.
func (s *Store) Insert(ctx context.Context, content, senderID string) error {
	if content == "" {
		return errors.New("content is required")
	}
	if senderID == "" {
		return errors.New("sender_id is required")
	}

	message := models.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.nextCreatedAt(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, content, created_at, is_read)
		VALUES (?, ?, ?, ?, 0)`,
		message.ID,
		message.SenderID,
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message %q: %w", message.ID, err)
	}

	s.publish(store.ChangeEvent{Type: store.EventInsert, Message: message})
	return nil
}

// MarkRead flips is_read to true for a row. Re-marking an already
// read row is a no-op and emits no event.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id is required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_read = 1 WHERE id = ? AND is_read = 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark read for message %q: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for mark read %q: %w", id, err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing row from one already marked read.
		if _, err := s.getMessage(ctx, id); err != nil {
			return err
		}
		return nil
	}

	message, err := s.getMessage(ctx, id)
	if err != nil {
		return err
	}

	s.publish(store.ChangeEvent{Type: store.EventUpdate, Message: *message})
	return nil
}

func (s *Store) getMessage(ctx context.Context, id string) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, sender_id, content, created_at, is_read
		FROM messages
		WHERE id = ?`,
		id,
	)

	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get message %q: %w", id, err)
	}
	return message, nil
}

func scanMessage(row scanner) (*models.Message, error) {
	var (
		message models.Message
		isRead  int
	)

	if err := row.Scan(
		&message.ID,
		&message.SenderID,
		&message.Content,
		&message.CreatedAt,
		&isRead,
	); err != nil {
		return nil, err
	}

	message.IsRead = isRead == 1
	return &message, nil
}
