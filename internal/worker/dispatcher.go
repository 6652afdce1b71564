package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
)

const defaultSendTimeout = 10 * time.Second

// Observer receives delivery outcomes.
type Observer interface {
	EmailOutcome(kind, outcome string)
}

// Outcomes reported to Observer.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Dispatcher sends e-mails on a bounded pool of workers. Enqueue never
// blocks: a full queue drops the e-mail with a warning.
type Dispatcher struct {
	notifier    notify.Notifier
	observer    Observer
	workers     int
	sendTimeout time.Duration
	logger      *slog.Logger

	jobs    chan notify.Email
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	closed  bool
	baseCtx context.Context
}

// NewDispatcher constructs the e-mail worker pool.
func NewDispatcher(notifier notify.Notifier, observer Observer, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		notifier:    notifier,
		observer:    observer,
		workers:     workers,
		sendTimeout: defaultSendTimeout,
		logger:      logger,
		jobs:        make(chan notify.Email, queueSize),
	}
}

// Start launches the workers. Sends outlive ctx cancellation so the queue
// can be drained on Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	d.baseCtx = context.WithoutCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue schedules email for delivery and reports whether it was accepted.
func (d *Dispatcher) Enqueue(email notify.Email) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(email, "dispatcher stopped")
		return false
	}

	select {
	case d.jobs <- email:
		return true
	default:
		d.drop(email, "queue full")
		return false
	}
}

// Stop closes the queue and waits for queued e-mails to be sent or for ctx
// to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for email := range d.jobs {
		d.send(email)
	}
}

func (d *Dispatcher) send(email notify.Email) {
	ctx, cancel := context.WithTimeout(d.baseCtx, d.sendTimeout)
	defer cancel()

	if err := d.notifier.Send(ctx, email); err != nil {
		d.logger.Error("send email failed",
			slog.String("kind", email.Kind),
			slog.String("order", email.OrderID),
			slog.String("error", err.Error()))
		d.observe(email.Kind, OutcomeFailed)
		return
	}
	d.observe(email.Kind, OutcomeSent)
}

func (d *Dispatcher) drop(email notify.Email, reason string) {
	d.logger.Warn("email dropped",
		slog.String("kind", email.Kind),
		slog.String("order", email.OrderID),
		slog.String("reason", reason))
	d.observe(email.Kind, OutcomeDropped)
}

func (d *Dispatcher) observe(kind, outcome string) {
	if d.observer != nil {
		d.observer.EmailOutcome(kind, outcome)
	}
}
