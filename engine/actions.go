package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"secretlink/crypto"
	"secretlink/models"
)

// UploadError reports a failed attachment upload. The send is aborted
// and no message row is inserted.
type UploadError struct {
	Path  string
	cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Path, e.cause)
}

func (e *UploadError) Unwrap() error {
	return e.cause
}

// Send encrypts text under the active key and inserts it as a new
// row. The row reaches the view only through the feed's echo of the
// insert; nothing is appended optimistically. A nil return is the
// caller's signal that the outgoing draft may be cleared — on error
// the draft is theirs to keep.
func (e *Engine) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	key, ok := e.session.Key()
	if !ok {
		return ErrLocked
	}

	envelope, err := crypto.EncryptString(key, trimmed)
	if err != nil {
		return fmt.Errorf("encrypt message: %w", err)
	}

	if err := e.store.Insert(ctx, envelope, e.session.UserID()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// SendAttachment uploads the payload under a random object name that
// keeps the original extension, then routes the public URL through
// the identical encrypt-and-insert path as a text send. An upload
// failure aborts the send without inserting a row.
func (e *Engine) SendAttachment(ctx context.Context, filename string, data []byte) error {
	if e.objects == nil {
		return errors.New("object store is not configured")
	}
	if !e.session.Unlocked() {
		return ErrLocked
	}

	path := uuid.NewString() + filepath.Ext(filename)
	if err := e.objects.Upload(ctx, path, data); err != nil {
		return &UploadError{Path: path, cause: err}
	}

	return e.Send(ctx, models.FormatImage(e.objects.PublicURL(path)))
}

// Unlock activates the passphrase key and schedules a full reload so
// already-received history decrypts retroactively.
func (e *Engine) Unlock(passphrase string) {
	e.session.Unlock(passphrase)

	select {
	case e.reloads <- struct{}{}:
	default:
		// A reload is already pending; it will use the new key.
	}
}
