package models

// Message is one chat row mirrored from the message store.
//
// Content holds the encrypted envelope text while the row is at rest
// and the decrypted plaintext (or a placeholder) once it has passed
// through the cipher. CreatedAt is assigned by the store and is the
// sole sort key; ID is the merge key for in-place updates.
type Message struct {
	ID        string `json:"id"`
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	IsRead    bool   `json:"is_read"`
}
