package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dataDir := t.TempDir()
	st, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close test store: %v", err)
		}
	})

	return st
}

func mustInsert(t *testing.T, st *Store, content, senderID string) {
	t.Helper()

	if err := st.Insert(context.Background(), content, senderID); err != nil {
		t.Fatalf("insert message from %q: %v", senderID, err)
	}
}

func waitForEvents(t *testing.T, counter func() int, want int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if counter() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %d", want, counter())
}
