package remote

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"secretlink/models"
	"secretlink/store"
)

const (
	realtimePath     = "/realtime"
	reconnectDelay   = 3 * time.Second
	handshakeTimeout = 10 * time.Second
)

// changeFrame is one feed notification on the wire.
type changeFrame struct {
	Event   string         `json:"event"`
	Message models.Message `json:"message"`
}

type realtimeSubscription struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	conn *websocket.Conn
}

// Cancel stops the feed. Events already decoded may still reach the
// handler; callers discard them after Cancel.
func (sub *realtimeSubscription) Cancel() {
	sub.cancel()
	sub.mu.Lock()
	if sub.conn != nil {
		_ = sub.conn.Close()
	}
	sub.mu.Unlock()
	sub.wg.Wait()
}

// Subscribe opens the realtime websocket and delivers change events
// in arrival order. The connection re-dials after failures until
// Cancel; rows missed while disconnected surface on the next full
// load.
func (s *Store) Subscribe(handler func(store.ChangeEvent)) (store.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &realtimeSubscription{ctx: ctx, cancel: cancel}

	sub.wg.Add(1)
	go sub.run(websocketURL(s.baseURL)+realtimePath, handler)

	return sub, nil
}

func (sub *realtimeSubscription) run(url string, handler func(store.ChangeEvent)) {
	defer sub.wg.Done()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	for {
		if sub.ctx.Err() != nil {
			return
		}

		conn, _, err := dialer.DialContext(sub.ctx, url, nil)
		if err != nil {
			if sub.ctx.Err() != nil {
				return
			}
			log.Printf("remote: realtime dial failed: %v", err)
			sub.sleep(reconnectDelay)
			continue
		}

		sub.mu.Lock()
		sub.conn = conn
		sub.mu.Unlock()

		if sub.ctx.Err() != nil {
			_ = conn.Close()
			return
		}

		sub.readLoop(conn, handler)

		sub.mu.Lock()
		sub.conn = nil
		sub.mu.Unlock()
		_ = conn.Close()

		sub.sleep(reconnectDelay)
	}
}

func (sub *realtimeSubscription) readLoop(conn *websocket.Conn, handler func(store.ChangeEvent)) {
	for {
		var frame changeFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if sub.ctx.Err() == nil {
				log.Printf("remote: realtime read failed: %v", err)
			}
			return
		}

		switch store.EventType(frame.Event) {
		case store.EventInsert, store.EventUpdate:
			handler(store.ChangeEvent{Type: store.EventType(frame.Event), Message: frame.Message})
		default:
			// Unknown frame types are skipped so feed extensions do
			// not break older clients.
		}
	}
}

func (sub *realtimeSubscription) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-sub.ctx.Done():
	}
}

// websocketURL rewrites an http(s) base URL to its ws(s) form.
func websocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}
