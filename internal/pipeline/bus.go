package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

// EventStore is the part of eventstore.Store the bus needs.
type EventStore interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
}

// Handler processes an event; return error to signal failure.
type Handler func(ctx context.Context, e eventstore.Event) error

// Bus is a simple synchronous pub/sub event bus. Events are persisted to
// the optional store before handlers run. Events the store rejects are kept
// in the dead letter queue.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	eventStore  EventStore
	dlq         *DeadLetterQueue
	logger      *slog.Logger
}

// NewBus creates a bus without persistence.
func NewBus() *Bus { return NewBusWithEventStore(nil) }

// NewBusWithEventStore creates a bus that persists events to the store.
func NewBusWithEventStore(store EventStore) *Bus {
	return &Bus{
		subscribers: map[string][]Handler{},
		eventStore:  store,
		dlq:         NewDeadLetterQueue(),
		logger:      slog.Default(),
	}
}

// SetLogger replaces the logger used for persistence failures.
func (b *Bus) SetLogger(l *slog.Logger) {
	if l != nil {
		b.logger = l
	}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
	b.mu.Unlock()
}

// DeadLetters returns the queue of events that could not be persisted.
func (b *Bus) DeadLetters() *DeadLetterQueue {
	return b.dlq
}

// Publish persists e and delivers it to all handlers synchronously. A
// persistence failure never fails the publish; a handler error does, and
// stops delivery to later handlers.
func (b *Bus) Publish(ctx context.Context, e eventstore.Event) error {
	if b.eventStore != nil {
		if err := b.eventStore.Append(ctx, e.BuildID(), e.Type(), e.Payload(), e.Metadata()); err != nil {
			b.dlq.Enqueue(FailedEvent{Event: e, Error: err, Timestamp: time.Now()})
			b.logger.Warn("Failed to persist build event",
				logfields.BuildID(e.BuildID()),
				logfields.Kind(e.Type()),
				logfields.Error(err))
		}
	}

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Type()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
