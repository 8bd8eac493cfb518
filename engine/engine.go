// Package engine owns the local view of the conversation: an ordered,
// decrypted mirror of the remote message rows. One goroutine applies
// every mutation — bulk loads, feed events, reload requests — so the
// list needs no locking and every read-modify-write is atomic.
package engine

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"secretlink/models"
	"secretlink/session"
	"secretlink/store"
)

var (
	// ErrEmptyMessage rejects sends whose trimmed text is empty.
	ErrEmptyMessage = errors.New("engine: message text is empty")
	// ErrLocked rejects sends while no passphrase key is active.
	ErrLocked = errors.New("engine: session is locked")
)

// Config wires an Engine to its collaborators.
type Config struct {
	Store   store.MessageStore
	Objects store.ObjectStore
	Session *session.Session

	// OnChange receives a copy of the view after every mutation. It is
	// invoked from the engine goroutine; consumers must not block.
	OnChange func([]models.Message)
}

// Engine reconciles the local view against the store's change feed.
type Engine struct {
	store    store.MessageStore
	objects  store.ObjectStore
	session  *session.Session
	onChange func([]models.Message)

	// messages is owned by the run loop. Sorted by CreatedAt
	// ascending, unique by ID, content already rendered.
	messages []models.Message

	events  chan store.ChangeEvent
	reloads chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	sub    store.Subscription
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
	startErr  error

	snapMu   sync.RWMutex
	snapshot []models.Message
}

// New creates an engine. It does nothing until Start.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("message store is required")
	}
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}

	return &Engine{
		store:    cfg.Store,
		objects:  cfg.Objects,
		session:  cfg.Session,
		onChange: cfg.OnChange,
		events:   make(chan store.ChangeEvent, 128),
		reloads:  make(chan struct{}, 1),
	}, nil
}

// Start subscribes to the change feed and performs the initial load.
//
// Subscription is established before the bulk fetch so a row inserted
// during the fetch window is never dropped; the reducer de-duplicates
// by id when the feed and the fetch overlap.
func (e *Engine) Start() error {
	e.startOnce.Do(func() {
		e.ctx, e.cancel = context.WithCancel(context.Background())

		sub, err := e.store.Subscribe(e.enqueue)
		if err != nil {
			e.cancel()
			e.startErr = err
			return
		}
		e.sub = sub

		e.wg.Add(1)
		go e.loop()
	})
	return e.startErr
}

// Stop cancels the subscription and waits for the loop to exit.
// Feed events still in flight are discarded.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
		if e.sub != nil {
			e.sub.Cancel()
		}
		e.wg.Wait()
	})
}

// Snapshot returns a copy of the current rendered view.
func (e *Engine) Snapshot() []models.Message {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()

	out := make([]models.Message, len(e.snapshot))
	copy(out, e.snapshot)
	return out
}

func (e *Engine) enqueue(event store.ChangeEvent) {
	select {
	case e.events <- event:
	case <-e.ctx.Done():
	}
}

func (e *Engine) loop() {
	defer e.wg.Done()

	e.load()

	for {
		select {
		case event := <-e.events:
			e.apply(event)
		case <-e.reloads:
			e.load()
		case <-e.ctx.Done():
			return
		}
	}
}

// load replaces the whole view from an ordered bulk fetch. It runs on
// startup and again after every unlock so history decrypts
// retroactively.
func (e *Engine) load() {
	rows, err := e.store.SelectAll(e.ctx)
	if err != nil {
		if e.ctx.Err() == nil {
			log.Printf("engine: initial load failed: %v", err)
		}
		return
	}

	view := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		rendered := row
		rendered.Content = e.render(row.Content)
		view = append(view, rendered)
		e.maybeMarkRead(row)
	}

	e.messages = view
	e.sortView()
	e.publish()
}

// apply is the reducer: keyed and idempotent by row id, so replayed
// or overlapping events cannot corrupt the view.
func (e *Engine) apply(event store.ChangeEvent) {
	rendered := event.Message
	rendered.Content = e.render(event.Message.Content)

	switch event.Type {
	case store.EventInsert:
		if i, ok := e.indexOf(event.Message.ID); ok {
			// Already present from the bulk load overlap window.
			e.messages[i] = rendered
		} else {
			e.messages = append(e.messages, rendered)
			e.sortView()
		}
		e.maybeMarkRead(event.Message)
	case store.EventUpdate:
		i, ok := e.indexOf(event.Message.ID)
		if !ok {
			// An update for a row we never saw is not an insert.
			return
		}
		e.messages[i] = rendered
	default:
		return
	}

	e.publish()
}

// maybeMarkRead issues the read receipt for rows authored by the
// other participant. Own rows are never marked by the local identity,
// and the store treats repeats as no-ops.
func (e *Engine) maybeMarkRead(row models.Message) {
	if row.SenderID == e.session.UserID() || row.IsRead {
		return
	}

	id := row.ID
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.store.MarkRead(e.ctx, id); err != nil && e.ctx.Err() == nil {
			log.Printf("engine: mark read %q failed: %v", id, err)
		}
	}()
}

func (e *Engine) indexOf(id string) (int, bool) {
	for i := range e.messages {
		if e.messages[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (e *Engine) sortView() {
	sort.SliceStable(e.messages, func(i, j int) bool {
		return e.messages[i].CreatedAt < e.messages[j].CreatedAt
	})
}

func (e *Engine) publish() {
	out := make([]models.Message, len(e.messages))
	copy(out, e.messages)

	e.snapMu.Lock()
	e.snapshot = out
	e.snapMu.Unlock()

	if e.onChange != nil {
		e.onChange(out)
	}
}
