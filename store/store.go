// Package store defines the boundary to the external backend: a
// row-based message store with a change feed, and an object store for
// binary blobs. Implementations live in storage (embedded SQLite) and
// remote (hosted backend client).
package store

import (
	"context"

	"secretlink/models"
)

const (
	// EventInsert is emitted when a new message row appears.
	EventInsert EventType = "INSERT"
	// EventUpdate is emitted when an existing row changes, including
	// read-receipt flips.
	EventUpdate EventType = "UPDATE"
)

// EventType identifies message row changes.
type EventType string

// ChangeEvent carries one row change from the feed. Message is the
// full row snapshot at event time, content still encrypted.
type ChangeEvent struct {
	Type    EventType
	Message models.Message
}

// Subscription is a handle on an active change feed.
type Subscription interface {
	// Cancel stops delivery. Events already in flight may still be
	// handed to the handler; callers discard them after Cancel.
	Cancel()
}

// MessageStore is the row store the sync engine reconciles against.
// The store assigns id and created_at on insert.
type MessageStore interface {
	// SelectAll returns every message ordered by created_at ascending.
	SelectAll(ctx context.Context) ([]models.Message, error)

	// Insert persists a new encrypted message. The row surfaces to
	// subscribers through the change feed, not through a return value.
	Insert(ctx context.Context, content, senderID string) error

	// MarkRead flips is_read to true for a row. Repeated calls on an
	// already-read row are no-ops.
	MarkRead(ctx context.Context, id string) error

	// Subscribe registers a handler for row changes in arrival order.
	Subscribe(handler func(ChangeEvent)) (Subscription, error)
}

// ObjectStore holds binary attachments and serves them by public URL.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte) error
	PublicURL(path string) string
}
