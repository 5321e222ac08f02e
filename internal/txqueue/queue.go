// Package txqueue runs registry transactions on a single worker goroutine
// and reports each outcome through a completion handler.
//
// Jobs execute one at a time in submission order. The handler passed to
// Submit is invoked exactly once, always from the worker goroutine (or, if
// the queue is already closed, from a short-lived goroutine), never from the
// caller of Submit. Callers must not assume a job has run when Submit returns.
package txqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/google/uuid"
)

// ErrClosed is reported to handlers of jobs submitted after Close.
var ErrClosed = errors.New("transaction queue closed")

// ErrPanicked wraps a panic raised inside a Job.
var ErrPanicked = errors.New("transaction panicked")

// Job is the unit of work; it usually wraps one dbx.Transactor.InTx call.
type Job func(ctx context.Context) error

// Completion receives the outcome of a Job.
type Completion func(err error)

type task struct {
	ctx  context.Context
	id   string
	name string
	job  Job
	done Completion
}

// Queue is a serial job runner. Pending jobs sit in an unbounded FIFO, so
// Submit never blocks, including when called from a Completion.
type Queue struct {
	logger logging.Logger

	mu      sync.Mutex
	closed  bool
	pending []task
	wake    chan struct{}
	exited  chan struct{}
}

// New starts a Queue; buffer preallocates room for that many pending jobs.
func New(logger logging.Logger, buffer int) *Queue {
	q := &Queue{
		logger:  logger,
		pending: make([]task, 0, buffer),
		wake:    make(chan struct{}, 1),
		exited:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues job and returns immediately. done may be nil.
func (q *Queue) Submit(ctx context.Context, name string, job Job, done Completion) {
	if done == nil {
		done = func(error) {}
	}
	t := task{ctx: ctx, id: uuid.NewString(), name: name, job: job, done: done}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		go done(ErrClosed)
		return
	}
	q.pending = append(q.pending, t)
	q.mu.Unlock()
	q.signal()
}

// Close stops accepting jobs and waits until pending ones have run. It must
// not be called from a Job or a Completion.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()

	<-q.exited
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) next() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return task{}, false
	}
	t := q.pending[0]
	q.pending[0] = task{}
	q.pending = q.pending[1:]
	return t, true
}

func (q *Queue) run() {
	defer close(q.exited)
	for {
		if t, ok := q.next(); ok {
			q.execute(t)
			continue
		}
		q.mu.Lock()
		stop := q.closed && len(q.pending) == 0
		q.mu.Unlock()
		if stop {
			return
		}
		<-q.wake
	}
}

func (q *Queue) execute(t task) {
	log := q.logger.With("tx_id", t.id, "op", t.name)

	err := t.ctx.Err()
	if err == nil {
		log.Debug(t.ctx, "transaction started")
		err = q.safeRun(t)
	}

	if err != nil {
		log.Error(t.ctx, "transaction failed", "error", err)
	} else {
		log.Debug(t.ctx, "transaction committed")
	}
	t.done(err)
}

func (q *Queue) safeRun(t task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, p)
		}
	}()
	return t.job(t.ctx)
}
