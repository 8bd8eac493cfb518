// Package session holds the passphrase-keyed unlock state for one
// signed-in identity. The state machine has two states: Locked
// (initial, no key) and Unlocked (derived key active). The transition
// is driven only by an explicit passphrase submission and never
// reverts on its own.
package session

import (
	"sync"

	"secretlink/crypto"
)

// Session carries the local identity and the volatile derived key.
// The key lives only in memory and is discarded with the process.
type Session struct {
	userID string

	mu       sync.RWMutex
	key      []byte
	unlocked bool
}

// New returns a locked session for the given identity.
func New(userID string) *Session {
	return &Session{userID: userID}
}

// UserID is the stable local identity used as sender_id.
func (s *Session) UserID() string {
	return s.userID
}

// Unlock derives the key from the passphrase and activates it.
// Submitting a different passphrase re-derives the key live; already
// rendered content is untouched until the next reload or row update.
func (s *Session) Unlock(passphrase string) {
	key := crypto.DeriveKey(passphrase)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.unlocked = true
}

// Key returns the active key and whether the session is unlocked.
func (s *Session) Key() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.unlocked
}

// Unlocked reports whether a working key is active.
func (s *Session) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked
}
