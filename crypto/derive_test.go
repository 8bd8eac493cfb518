package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyIsDeterministic(t *testing.T) {
	first := DeriveKey("duo")
	second := DeriveKey("duo")

	if len(first) != aes256KeySize {
		t.Fatalf("expected %d-byte key, got %d", aes256KeySize, len(first))
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("same passphrase produced different keys")
	}
}

func TestDeriveKeyDistinguishesPassphrases(t *testing.T) {
	if bytes.Equal(DeriveKey("duo"), DeriveKey("wrong")) {
		t.Fatalf("different passphrases produced the same key")
	}
}

func TestDeriveKeyAcceptsEmptyPassphrase(t *testing.T) {
	// An empty passphrase is not an error at derivation time; the
	// resulting key just fails to open anyone else's envelopes.
	key := DeriveKey("")
	if len(key) != aes256KeySize {
		t.Fatalf("expected %d-byte key, got %d", aes256KeySize, len(key))
	}
}
