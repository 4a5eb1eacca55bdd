package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrClosed is returned by Submit after the loop has been closed.
// A submission that returns ErrClosed is guaranteed never to execute.
var ErrClosed = errors.New("serial domain closed")

// Loop is a serial execution domain backed by a single goroutine.
//
// The goroutine is started by NewLoop and drains the task queue in FIFO
// order until Close is called and all accepted tasks have run.
//
// Thread-safety model:
//   - Submit: safe from any goroutine
//   - Close:  safe from any goroutine, idempotent
//   - Wait:   safe from any goroutine, blocks until the loop exits
//
// INVARIANTS:
//   - At most one task is executing at any instant
//   - Tasks from one submitter execute in submission order
//   - A task accepted by Submit runs exactly once, even across Close
type Loop struct {
	name   string
	id     Identity
	queue  *taskQueue
	base   context.Context
	logger *slog.Logger
	done   chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the logger used for lifecycle events.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithBaseContext sets the context from which task contexts derive.
// Defaults to context.Background(). Tasks always run under the loop's
// base context, never the submitter's.
func WithBaseContext(ctx context.Context) LoopOption {
	return func(l *Loop) {
		l.base = ctx
	}
}

// NewLoop creates a serial domain and starts its goroutine.
// The name appears in logs and errors only; identity is the token.
func NewLoop(name string, opts ...LoopOption) *Loop {
	l := &Loop{
		name:   name,
		id:     NewIdentity(),
		queue:  newTaskQueue(),
		base:   context.Background(),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.logger.Debug("serial domain started", "domain", l.name, "identity", l.id)
	go l.run()
	return l
}

// Name returns the domain's human-readable name.
func (l *Loop) Name() string {
	return l.name
}

// Identity implements Domain.
func (l *Loop) Identity() Identity {
	return l.id
}

// Submit implements Domain.
//
// The submitter's ctx gates acceptance only: a context that is already
// cancelled causes Submit to fail without enqueuing. Once accepted, the
// task runs to completion regardless of the submitter's context.
func (l *Loop) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return fmt.Errorf("submit to %q: nil task", l.name)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submit to %q: %w", l.name, err)
	}
	if !l.queue.enqueue(task) {
		return fmt.Errorf("submit to %q: %w", l.name, ErrClosed)
	}
	return nil
}

// Close stops accepting submissions. Already-accepted tasks still run;
// the loop goroutine exits once the queue is drained. Idempotent.
func (l *Loop) Close() {
	l.queue.close()
}

// Wait blocks until the loop goroutine has exited.
// Returns immediately if the loop already exited.
func (l *Loop) Wait() {
	<-l.done
}

// Pending returns the number of accepted tasks not yet started.
func (l *Loop) Pending() int {
	return l.queue.len()
}

func (l *Loop) run() {
	defer close(l.done)
	defer l.logger.Debug("serial domain stopped", "domain", l.name, "identity", l.id)

	for {
		if task, ok := l.queue.tryDequeue(); ok {
			l.exec(task)
			continue
		}

		// Queue empty: wait for a wakeup. A closed signal channel means
		// no more submissions can arrive; drain stragglers and exit.
		if _, open := <-l.queue.wait(); !open {
			for {
				task, ok := l.queue.tryDequeue()
				if !ok {
					return
				}
				l.exec(task)
			}
		}
	}
}

// exec runs one task with the domain's run token armed.
//
// The token is disarmed on the way out (even on panic) so a context
// captured by the task and leaked past its completion can never probe
// as this domain again.
func (l *Loop) exec(task Task) {
	tok := &runToken{domain: l.id}
	tok.armed.Store(true)
	defer tok.armed.Store(false)

	task(withRunToken(l.base, tok))
}
