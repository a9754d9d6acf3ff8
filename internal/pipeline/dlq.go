package pipeline

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
)

// FailedEvent wraps an event with its error and timestamp for DLQ storage.
type FailedEvent struct {
	Event     eventstore.Event
	Error     error
	Timestamp time.Time
}

// DeadLetterQueue stores events the event store rejected, so that a later
// build can write them once the store is reachable again.
type DeadLetterQueue struct {
	mu     sync.Mutex
	failed []FailedEvent
}

// NewDeadLetterQueue creates a new DLQ.
func NewDeadLetterQueue() *DeadLetterQueue {
	return &DeadLetterQueue{}
}

// Enqueue adds a failed event to the queue.
func (dlq *DeadLetterQueue) Enqueue(fe FailedEvent) {
	dlq.mu.Lock()
	dlq.failed = append(dlq.failed, fe)
	dlq.mu.Unlock()
}

// GetAll returns a copy of all failed events, oldest first.
func (dlq *DeadLetterQueue) GetAll() []FailedEvent {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	return append([]FailedEvent(nil), dlq.failed...)
}

// Count returns the number of failed events in the queue.
func (dlq *DeadLetterQueue) Count() int {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	return len(dlq.failed)
}

// Replay appends queued events to store in their original order. It stops
// at the first failure and keeps that event and everything after it queued.
// It returns the number of events written.
func (dlq *DeadLetterQueue) Replay(ctx context.Context, store EventStore) (int, error) {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()

	for i, fe := range dlq.failed {
		e := fe.Event
		if err := store.Append(ctx, e.BuildID(), e.Type(), e.Payload(), e.Metadata()); err != nil {
			dlq.failed = dlq.failed[i:]
			dlq.failed[0].Error = err
			return i, err
		}
	}
	n := len(dlq.failed)
	dlq.failed = nil
	return n, nil
}
