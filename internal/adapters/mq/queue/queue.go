// Package queue carries view events from producers (HTTP handlers, fetch
// goroutines) to the single loop goroutine that applies them.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Envelope is one queued event. Done, when non-nil, is closed by the
// consumer once the event has been applied.
type Envelope struct {
	Event    view.Event
	Enqueued time.Time
	Done     chan struct{}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an envelope without blocking. It returns false when the
	// queue is full or closed.
	Enqueue(ctx context.Context, e Envelope) bool

	// Put adds an envelope, waiting for room until ctx is done.
	Put(ctx context.Context, e Envelope) error

	// Dequeue returns the channel the consumer reads from. It is closed
	// after Close once drained.
	Dequeue(ctx context.Context) <-chan Envelope

	// Len returns the current number of queued envelopes.
	Len(ctx context.Context) int

	// Close stops accepting envelopes.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan Envelope
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Envelope, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an envelope to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Envelope) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return false
	}
	if e.Enqueued.IsZero() {
		e.Enqueued = time.Now()
	}

	select {
	case q.events <- e:
		metrics.UpdateQueueSize(len(q.events))
		return true
	case <-ctx.Done():
		metrics.RecordQueueRejected("context_cancelled")
		return false
	default:
		metrics.RecordQueueRejected("queue_full")
		return false
	}
}

// Put adds an envelope, blocking while the queue is full.
func (q *InMemoryQueue) Put(ctx context.Context, e Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if e.Enqueued.IsZero() {
		e.Enqueued = time.Now()
	}

	select {
	case q.events <- e:
		metrics.UpdateQueueSize(len(q.events))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueRejected("context_cancelled")
		return ctx.Err()
	}
}

// Dequeue returns the consumer channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Envelope {
	return q.events
}

// Len returns the current number of queued envelopes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue. Queued envelopes stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
