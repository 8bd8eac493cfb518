package storage

import (
	"errors"
	"sync"

	"secretlink/store"
)

const subscriptionBuffer = 128

// subscription is one registered change-feed consumer. Events are
// handed to the handler from a dedicated goroutine so store writes
// never block on a slow consumer.
type subscription struct {
	owner  *Store
	id     int
	events chan store.ChangeEvent
	once   sync.Once
	done   sync.WaitGroup
}

// Cancel detaches the subscription. In-flight events may still reach
// the handler before delivery stops.
func (sub *subscription) Cancel() {
	sub.once.Do(func() {
		sub.owner.removeSubscriber(sub.id)
	})
	sub.done.Wait()
}

// Subscribe registers a handler for row changes. Events are delivered
// in the order the store committed them.
func (s *Store) Subscribe(handler func(store.ChangeEvent)) (store.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		return nil, errors.New("store is closed")
	}

	s.nextSubID++
	sub := &subscription{
		owner:  s,
		id:     s.nextSubID,
		events: make(chan store.ChangeEvent, subscriptionBuffer),
	}
	s.subs[sub.id] = sub

	sub.done.Add(1)
	go func() {
		defer sub.done.Done()
		for event := range sub.events {
			handler(event)
		}
	}()

	return sub, nil
}

func (s *Store) publish(event store.ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub.events <- event:
		default:
			// A consumer that fell this far behind misses the event;
			// it will reconcile on its next full load.
		}
	}
}

func (s *Store) removeSubscriber(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return
	}
	delete(s.subs, id)
	close(sub.events)
}

func (s *Store) cancelAllSubscriptions() {
	s.subMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subMu.Unlock()

	for _, sub := range subs {
		close(sub.events)
		sub.done.Wait()
	}
}
