package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	aes256KeySize    = 32
	pbkdf2Iterations = 100000
	// sharedSalt is fixed across every client. Envelopes are only
	// interoperable while the derivation parameters stay identical.
	sharedSalt = "our-special-salt"
)

// DeriveKey turns a shared passphrase into the AES-256 key.
//
// Derivation is deterministic: every holder of the same passphrase
// computes the same key, which is what lets one participant decrypt
// the other's envelopes. There is no error path; a mistyped or empty
// passphrase still yields a key, one that simply fails to open
// existing envelopes.
func DeriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(sharedSalt), pbkdf2Iterations, aes256KeySize, sha256.New)
}
