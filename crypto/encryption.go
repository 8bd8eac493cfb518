package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// DecryptError reports ciphertext that could not be opened: a wrong
// key, tampered data, or envelope text that does not parse. Callers
// treat all three the same way, so they share one error type.
type DecryptError struct {
	cause error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt envelope: %v", e.cause)
}

func (e *DecryptError) Unwrap() error {
	return e.cause
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random nonce.
func Encrypt(key []byte, plaintext string) (Envelope, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("generate nonce: %w", err)
	}

	return Envelope{
		Nonce: nonce,
		Data:  aead.Seal(nil, nonce, []byte(plaintext), nil),
	}, nil
}

// Decrypt opens an envelope. Authentication failure comes back as a
// DecryptError, never a panic.
func Decrypt(key []byte, env Envelope) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return "", &DecryptError{cause: fmt.Errorf("invalid nonce length: got %d want %d", len(env.Nonce), aead.NonceSize())}
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Data, nil)
	if err != nil {
		return "", &DecryptError{cause: err}
	}

	return string(plaintext), nil
}

// EncryptString seals plaintext and returns the storage text form.
func EncryptString(key []byte, plaintext string) (string, error) {
	env, err := Encrypt(key, plaintext)
	if err != nil {
		return "", err
	}
	return env.Marshal()
}

// DecryptString parses stored envelope text and opens it in one step.
// Malformed envelope text collapses into the same DecryptError as an
// authentication failure: neither is recoverable without a different
// passphrase or a different row.
func DecryptString(key []byte, raw string) (string, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return "", &DecryptError{cause: err}
	}
	return Decrypt(key, env)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != aes256KeySize {
		return nil, fmt.Errorf("invalid key length: got %d want %d", len(key), aes256KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return aead, nil
}
