// Package app runs the view state machine: it owns the single State, feeds
// it events from one loop goroutine and executes the commands it returns.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/okian/tcxview/internal/adapters/mq/queue"
	"github.com/okian/tcxview/internal/adapters/mq/worker"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
	"github.com/okian/tcxview/pkg/metrics"
)

const defaultQueueSize = 1024

// Fetcher is the data service as seen by the controller.
type Fetcher interface {
	Activities(ctx context.Context) ([]model.ActivitySummary, error)
	ActivityData(ctx context.Context, id model.ID, smoothing int) (model.ActivityData, error)
	ActivityDetails(ctx context.Context, id model.ID) (model.Details, error)
	MonthlyData(ctx context.Context, year int, month time.Month) (model.MonthlyData, error)
	ProgressData(ctx context.Context) (model.ProgressData, error)
}

// Renderer owns the live chart surfaces.
type Renderer interface {
	Sync(ctx context.Context, specs []view.ChartSpec) error
	ReleaseAll() error
	Len() int
}

// Stats is a snapshot of controller counters.
type Stats struct {
	Events     uint64 `json:"events"`
	Fetches    uint64 `json:"fetches"`
	Stale      uint64 `json:"stale"`
	Renders    uint64 `json:"renders"`
	InFlight   int    `json:"in_flight"`
	QueueLen   int    `json:"queue_len"`
	LiveCharts int    `json:"live_charts"`
}

// Controller owns the UI state. State is only written by the loop
// goroutine; Frame and State may be read from anywhere.
type Controller struct {
	fetcher Fetcher
	charts  Renderer

	settings  view.Settings
	queueSize int
	now       func() time.Time
	logger    logger.Logger

	queue *queue.InMemoryQueue
	loop  *worker.InMemoryWorker

	mu    sync.RWMutex
	state view.State
	frame view.Frame

	lifecycle     sync.Mutex
	started       bool
	stopped       bool
	fetchCtx      context.Context
	cancelFetches context.CancelFunc
	fetches       sync.WaitGroup

	events  atomic.Uint64
	fetched atomic.Uint64
	stale   atomic.Uint64
	renders atomic.Uint64
}

// New constructs a Controller. Nothing runs until Start.
func New(fetcher Fetcher, charts Renderer, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		charts:    charts,
		settings:  view.DefaultSettings(),
		queueSize: defaultQueueSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("controller")
	}

	c.state = view.New(c.settings)
	c.frame = view.Describe(c.state)
	c.fetchCtx, c.cancelFetches = context.WithCancel(context.Background())
	c.queue = queue.NewInMemoryQueue(queue.WithCapacity(c.queueSize))
	c.loop = worker.NewInMemoryWorker(c.queue, worker.HandlerFunc(c.handle),
		worker.WithName("view-loop"),
		worker.WithLogger(c.logger.Named("loop")),
	)
	return c
}

// Start runs the loop and requests the activities list.
func (c *Controller) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	c.started = true

	go c.loop.Run(ctx)
	c.logger.Info(ctx, "view controller started",
		logger.Int("queueSize", c.queueSize),
		logger.String("units", string(c.settings.Units)),
		logger.Int("smoothing", c.settings.Smoothing),
	)
	return c.post(view.Init{Now: c.now()})
}

// Submit queues ev and waits until the loop has applied it.
func (c *Controller) Submit(ctx context.Context, ev view.Event) error {
	done := make(chan struct{})
	if !c.queue.Enqueue(ctx, queue.Envelope{Event: ev, Enqueued: c.now(), Done: done}) {
		if c.queue.IsClosed() {
			return ErrStopped
		}
		return ErrQueueFull
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.loop.Done():
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Frame returns the last rendered frame.
func (c *Controller) Frame() view.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// State returns the current state.
func (c *Controller) State() view.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Stats returns controller counters.
func (c *Controller) Stats(ctx context.Context) Stats {
	return Stats{
		Events:     c.events.Load(),
		Fetches:    c.fetched.Load(),
		Stale:      c.stale.Load(),
		Renders:    c.renders.Load(),
		InFlight:   c.State().InFlight(),
		QueueLen:   c.queue.Len(ctx),
		LiveCharts: c.charts.Len(),
	}
}

// Shutdown cancels outstanding fetches, stops the loop and releases every
// chart surface.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.stopped {
		return nil
	}
	c.stopped = true

	c.cancelFetches()
	var err error
	if c.started {
		err = multierr.Append(err, c.loop.Shutdown(ctx))
	}

	waited := make(chan struct{})
	go func() {
		c.fetches.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for fetches: %w", ctx.Err()))
	}

	err = multierr.Append(err, c.queue.Close())
	err = multierr.Append(err, c.charts.ReleaseAll())
	c.logger.Info(ctx, "view controller stopped", logger.Uint64("events", c.events.Load()))
	return err
}

// post queues an event from inside the controller, waiting for room.
func (c *Controller) post(ev view.Event) error {
	err := c.queue.Put(c.fetchCtx, queue.Envelope{Event: ev, Enqueued: c.now()})
	if err != nil {
		c.logger.Debug(c.fetchCtx, "event dropped", logger.String("kind", ev.Kind()), logger.Error(err))
	}
	return err
}

// handle runs on the loop goroutine only.
func (c *Controller) handle(ctx context.Context, e queue.Envelope) error {
	s := c.state

	switch ev := e.Event.(type) {
	case view.FetchSucceeded:
		if !s.Current(ev.Target, ev.Seq) {
			c.dropStale(ctx, ev.Target, ev.Seq)
			return nil
		}
	case view.FetchFailed:
		if !s.Current(ev.Target, ev.Seq) {
			c.dropStale(ctx, ev.Target, ev.Seq)
			return nil
		}
		if ev.Target == view.TargetSessionDetails {
			c.logger.Warn(ctx, "details unavailable", logger.String("tcxid", string(ev.Request.ID)), logger.Error(ev.Err))
		} else {
			c.logger.Error(ctx, "fetch failed", logger.String("target", ev.Target.String()), logger.Error(ev.Err))
		}
	}

	next, cmds := view.Dispatch(s, e.Event)
	c.events.Add(1)
	metrics.RecordEventDispatched(e.Event.Kind())

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	var err error
	for _, cmd := range cmds {
		switch cmd := cmd.(type) {
		case view.Fetch:
			c.fetch(cmd)
		case view.Render:
			err = multierr.Append(err, c.render(ctx, next, cmd))
		}
	}
	return err
}

func (c *Controller) dropStale(ctx context.Context, t view.Target, seq uint64) {
	c.stale.Add(1)
	metrics.RecordStaleResponse(t.String())
	c.logger.Debug(ctx, "stale response dropped",
		logger.String("target", t.String()),
		logger.Uint64("seq", seq),
	)
}

// fetch calls the data service on its own goroutine and posts the outcome
// back to the loop. It never touches state.
func (c *Controller) fetch(cmd view.Fetch) {
	c.fetched.Add(1)
	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()

		payload, err := c.call(c.fetchCtx, cmd)
		if errors.Is(err, context.Canceled) && c.fetchCtx.Err() != nil {
			return
		}
		if err != nil {
			_ = c.post(view.FetchFailed{Target: cmd.Target, Seq: cmd.Seq, Request: cmd.Request, Err: err})
			return
		}
		_ = c.post(view.FetchSucceeded{Target: cmd.Target, Seq: cmd.Seq, Request: cmd.Request, Payload: payload})
	}()
}

func (c *Controller) call(ctx context.Context, cmd view.Fetch) (any, error) {
	req := cmd.Request
	switch cmd.Target {
	case view.TargetActivities:
		list, err := c.fetcher.Activities(ctx)
		return list, err
	case view.TargetSessionData:
		data, err := c.fetcher.ActivityData(ctx, req.ID, req.Smoothing)
		return data, err
	case view.TargetSessionDetails:
		details, err := c.fetcher.ActivityDetails(ctx, req.ID)
		return details, err
	case view.TargetMonth:
		month, err := c.fetcher.MonthlyData(ctx, req.Cursor.Year, req.Cursor.Month)
		return month, err
	case view.TargetProgress:
		data, err := c.fetcher.ProgressData(ctx)
		return data, err
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, cmd.Target)
	}
}

func (c *Controller) render(ctx context.Context, s view.State, cmd view.Render) error {
	start := time.Now()
	frame := view.Describe(s)
	err := c.charts.Sync(ctx, frame.Charts)

	c.mu.Lock()
	c.frame = frame
	c.mu.Unlock()

	c.renders.Add(1)
	metrics.RecordRender(string(cmd.View), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		return fmt.Errorf("render %s: %w", cmd.View, err)
	}
	return nil
}
