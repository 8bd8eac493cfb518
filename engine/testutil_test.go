package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"secretlink/models"
	"secretlink/session"
	"secretlink/store"
)

// fakeStore is an in-memory MessageStore with injectable failures.
// It emits feed events synchronously from Insert/MarkRead, which is
// safe because the engine buffers incoming events.
type fakeStore struct {
	mu      sync.Mutex
	rows    []models.Message
	nextSeq int64

	insertErr   error
	selectErr   error
	muteEvents  bool
	handler     func(store.ChangeEvent)
	markedRead  []string
	insertCalls int
}

type fakeSub struct {
	owner *fakeStore
}

func (s *fakeSub) Cancel() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.owner.handler = nil
}

func (f *fakeStore) SelectAll(ctx context.Context) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := make([]models.Message, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeStore) Insert(ctx context.Context, content, senderID string) error {
	f.mu.Lock()
	f.insertCalls++
	if f.insertErr != nil {
		f.mu.Unlock()
		return f.insertErr
	}
	f.nextSeq++
	message := models.Message{
		ID:        fmt.Sprintf("row-%d", f.nextSeq),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: f.nextSeq,
	}
	f.rows = append(f.rows, message)
	f.mu.Unlock()

	f.emit(store.ChangeEvent{Type: store.EventInsert, Message: message})
	return nil
}

func (f *fakeStore) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	f.markedRead = append(f.markedRead, id)
	var updated *models.Message
	for i := range f.rows {
		if f.rows[i].ID == id && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			row := f.rows[i]
			updated = &row
			break
		}
	}
	f.mu.Unlock()

	if updated != nil {
		f.emit(store.ChangeEvent{Type: store.EventUpdate, Message: *updated})
	}
	return nil
}

func (f *fakeStore) Subscribe(handler func(store.ChangeEvent)) (store.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return &fakeSub{owner: f}, nil
}

func (f *fakeStore) emit(event store.ChangeEvent) {
	f.mu.Lock()
	handler := f.handler
	muted := f.muteEvents
	f.mu.Unlock()

	if handler != nil && !muted {
		handler(event)
	}
}

// seed adds a pre-existing row without emitting a feed event, as if
// it were stored before this session began.
func (f *fakeStore) seed(senderID, content string, isRead bool) models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSeq++
	message := models.Message{
		ID:        fmt.Sprintf("row-%d", f.nextSeq),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: f.nextSeq,
		IsRead:    isRead,
	}
	f.rows = append(f.rows, message)
	return message
}

func (f *fakeStore) readMarks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.markedRead))
	copy(out, f.markedRead)
	return out
}

func (f *fakeStore) inserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertCalls
}

// fakeObjects is an in-memory ObjectStore with an injectable failure.
type fakeObjects struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{uploaded: make(map[string][]byte)}
}

func (f *fakeObjects) Upload(ctx context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded[path] = data
	return nil
}

func (f *fakeObjects) PublicURL(path string) string {
	return "https://objects.test/" + path
}

func newTestEngine(t *testing.T, fake *fakeStore, objects store.ObjectStore, userID string) (*Engine, *session.Session) {
	t.Helper()

	sess := session.New(userID)
	eng, err := New(Config{Store: fake, Objects: objects, Session: sess})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(eng.Stop)

	return eng, sess
}

func waitForView(t *testing.T, eng *Engine, ok func([]models.Message) bool, timeout time.Duration) []models.Message {
	t.Helper()

	deadline := time.Now().Add(timeout)
	var last []models.Message
	for time.Now().Before(deadline) {
		last = eng.Snapshot()
		if ok(last) {
			return last
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for view condition; last view: %+v", last)
	return nil
}
