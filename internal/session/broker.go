package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler receives auth state changes. Handlers run on the publisher's
// goroutine and should return promptly.
type Handler func(Change)

// Publisher is implemented by Broker and RedisBridge.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Broker fans auth state changes out to in-process subscribers.
type Broker struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[uint64]Handler
	log      *zap.Logger
}

func NewBroker(log *zap.Logger) *Broker {
	return &Broker{handlers: make(map[uint64]Handler), log: log}
}

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	once   sync.Once
	broker *Broker
	id     uint64
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.handlers, s.id)
		s.broker.mu.Unlock()
	})
}

// OnAuthStateChange registers h for every subsequent change.
func (b *Broker) OnAuthStateChange(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.handlers[b.next] = h
	return &Subscription{broker: b, id: b.next}
}

// Publish delivers c to every current subscriber.
func (b *Broker) Publish(_ context.Context, c Change) error {
	b.deliver(c)
	return nil
}

func (b *Broker) deliver(c Change) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.log.Debug("auth state change",
		zap.String("event", string(c.Event)),
		zap.String("session_id", c.Session.ID),
		zap.Int("subscribers", len(handlers)))

	for _, h := range handlers {
		h(c)
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Watch streams matching changes until ctx is done, then unsubscribes and
// closes the channel. A slow reader loses changes rather than stalling
// publishers.
func (b *Broker) Watch(ctx context.Context, match func(Change) bool) <-chan Change {
	out := make(chan Change, 8)

	var mu sync.Mutex
	closed := false

	sub := b.OnAuthStateChange(func(c Change) {
		if match != nil && !match(c) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- c:
		default:
			b.log.Warn("dropping auth change for slow watcher", zap.String("event", string(c.Event)))
		}
	})

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()

	return out
}
