package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// JobCreatedHandler reacts to a committed job on the notification worker.
type JobCreatedHandler func(ctx context.Context, job types.Job) error

// DispatcherConfig tunes the worker pool.
type DispatcherConfig struct {
	// Interval is the minimum spacing between outbound mails. Zero disables throttling.
	Interval  time.Duration
	QueueSize int
	Workers   int
}

type task struct {
	name      string
	requestID string
	run       func(ctx context.Context) error
}

// Dispatcher runs notification work detached from the requests that trigger it.
// Failures are logged and never reported back to the caller.
type Dispatcher struct {
	mailer  Mailer
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	queue  chan task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// grace bounds the wait for workers after Close cancels them.
	grace  time.Duration

	mu         sync.RWMutex
	closed     bool
	jobCreated []JobCreatedHandler
}

// NewDispatcher starts the worker goroutines.
func NewDispatcher(mailer Mailer, cfg DispatcherConfig, logger *zap.SugaredLogger) *Dispatcher {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		mailer:  mailer,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		queue:   make(chan task, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		grace:   5 * time.Second,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// OnJobCreated registers a handler for committed jobs.
func (d *Dispatcher) OnJobCreated(h JobCreatedHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobCreated = append(d.jobCreated, h)
}

// JobCreated queues the job for every registered handler.
func (d *Dispatcher) JobCreated(ctx context.Context, job types.Job) {
	d.mu.RLock()
	handlers := append([]JobCreatedHandler(nil), d.jobCreated...)
	d.mu.RUnlock()

	d.enqueue(ctx, "job_created", func(wctx context.Context) error {
		var errs error
		for _, h := range handlers {
			if err := h(wctx, job); err != nil {
				errs = errors.CombineErrors(errs, err)
			}
		}
		return errs
	})
}

// Notify queues msg for delivery.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	d.enqueue(ctx, "mail", func(wctx context.Context) error {
		return d.Deliver(wctx, msg)
	})
}

// Deliver sends msg on the calling goroutine, honoring the outbound rate.
// Handlers running on the worker use it directly.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "mail rate wait aborted")
	}
	return d.mailer.Send(ctx, msg)
}

func (d *Dispatcher) enqueue(ctx context.Context, name string, run func(ctx context.Context) error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warnw("notification dropped after shutdown", "event", name)
		return
	}
	t := task{name: name, requestID: observability.RequestID(ctx), run: run}
	select {
	case d.queue <- t:
	default:
		d.logger.Warnw("notification queue full, dropping", "event", name, "request_id", t.requestID)
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for t := range d.queue {
		d.runTask(t)
	}
}

func (d *Dispatcher) runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorw("notification task panicked", "event", t.name, "panic", r)
		}
	}()
	start := time.Now()
	if err := t.run(d.ctx); err != nil {
		d.logger.Errorw("notification failed",
			"event", t.name,
			"request_id", t.requestID,
			"error", err,
		)
		return
	}
	d.logger.Debugw("notification done", "event", t.name, "duration_ms", time.Since(start).Milliseconds())
}

// Close stops accepting work and waits for queued tasks. When ctx expires
// first, in-flight tasks are cancelled and Close returns after a short grace
// period even if a task keeps running.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		timer := time.NewTimer(d.grace)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			d.logger.Warnw("abandoning notification workers that ignore cancellation")
		}
		return errors.Wrap(ctx.Err(), "notification queue not drained")
	}
}
