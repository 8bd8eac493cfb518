package engine

import (
	"secretlink/crypto"
	"secretlink/models"
)

const (
	// PlaceholderLocked stands in for content while no key is active.
	PlaceholderLocked = "🔒 Locked"
	// PlaceholderDecryptFailed stands in for content the active key
	// cannot open. Wrong passphrases are an expected condition, so
	// this renders instead of surfacing an error.
	PlaceholderDecryptFailed = "🔒 Decryption failed (Wrong Passphrase?)"
)

const (
	// ReceiptSent labels an outgoing message the other side has not
	// retrieved yet.
	ReceiptSent = "Sent"
	// ReceiptSeen labels an outgoing message with its read receipt set.
	ReceiptSeen = "Seen"
)

// render turns stored envelope text into display content. It never
// fails: a locked session or an unopenable envelope yields a fixed
// placeholder.
func (e *Engine) render(envelope string) string {
	key, ok := e.session.Key()
	if !ok {
		return PlaceholderLocked
	}

	plaintext, err := crypto.DecryptString(key, envelope)
	if err != nil {
		return PlaceholderDecryptFailed
	}
	return plaintext
}

// ReceiptLabel projects the delivery state of one of the local
// identity's own messages. It is purely a view of stored state.
func (e *Engine) ReceiptLabel(message models.Message) string {
	if message.IsRead {
		return ReceiptSeen
	}
	return ReceiptSent
}
