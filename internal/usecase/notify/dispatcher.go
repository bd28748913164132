// Package notify runs the fire-and-forget confirmation-mail jobs queued by
// the checkout return flow. A payment that succeeded must never look failed
// because mail did not go out, so failures are logged and dropped rather
// than surfaced or retried.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one queued session ID (fetch the provider session,
// record the receipt, send the mail).
type Handler func(ctx context.Context, sessionID string) error

const jobTimeout = 30 * time.Second

type Dispatcher struct {
	jobs    chan string
	handler Handler
	log     *zap.Logger
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(handler Handler, buffer int, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		jobs:    make(chan string, buffer),
		handler: handler,
		log:     log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue queues a session for confirmation mail. Returns false when the
// queue is full or closed; callers treat that as a logged loss, not an error.
func (d *Dispatcher) Enqueue(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- sessionID:
		return true
	default:
		d.log.Warn("confirmation mail queue full, dropping job",
			zap.String("session_id", sessionID))
		return false
	}
}

// Close stops intake, drains queued jobs, and waits for the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for sessionID := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		if err := d.handler(ctx, sessionID); err != nil {
			d.log.Error("confirmation mail failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		cancel()
	}
}
