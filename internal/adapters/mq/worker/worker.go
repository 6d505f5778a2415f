// Package worker runs the single loop goroutine that applies queued view
// events one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/tcxview/internal/adapters/mq/queue"
	"github.com/okian/tcxview/pkg/logger"
	"github.com/okian/tcxview/pkg/metrics"
)

// Handler applies one envelope. It is only ever called from the loop
// goroutine, so implementations need no locking for their own state.
type Handler interface {
	Handle(ctx context.Context, e queue.Envelope) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e queue.Envelope) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e queue.Envelope) error { return f(ctx, e) }

// Queue defines how the worker receives envelopes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Envelope
	Len(ctx context.Context) int
}

// Worker is the event loop contract.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker drains a queue on one goroutine.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		handler:  handler,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, e)
		}
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown signals the loop to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, e queue.Envelope) {
	defer func() {
		if e.Done != nil {
			close(e.Done)
		}
	}()
	metrics.UpdateQueueSize(w.queue.Len(ctx))

	if err := w.handler.Handle(ctx, e); err != nil {
		metrics.RecordErrorByType("handle_event", "medium")
		w.logger.Error(ctx, "error handling event",
			logger.String("kind", e.Event.Kind()),
			logger.Error(err),
		)
	}
}
