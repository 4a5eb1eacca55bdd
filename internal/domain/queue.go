package domain

import "sync"

// taskQueue is a thread-safe FIFO queue of pending tasks.
//
// The queue is unbounded so that Submit never blocks a submitter: a
// foreign context must be able to hand work to the loop without taking
// on the loop's blocking semantics (that is the whole point of the
// async-submit-plus-signal slow path).
//
// Enqueuing is safe from any goroutine; only the loop goroutine
// dequeues. The buffered signal channel (size 1) coalesces wakeups and
// lets the loop wait without spinning.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
	signal chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		tasks:  make([]Task, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// enqueue appends a task. Returns false if the queue is closed; a
// rejected task will never run.
func (q *taskQueue) enqueue(t Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.tasks = append(q.tasks, t)

	// Non-blocking send; a full buffer means a wakeup is already pending.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// tryDequeue pops the front task without blocking.
// Returns (nil, false) if the queue is empty.
func (q *taskQueue) tryDequeue() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}

	t := q.tasks[0]

	// Nil out the slot so the task's captured state is collectable even
	// while the backing array is retained.
	q.tasks[0] = nil

	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}

	return t, true
}

// wait returns the wakeup channel. The loop selects on it between
// drain passes; the channel is closed when the queue closes.
func (q *taskQueue) wait() <-chan struct{} {
	return q.signal
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// close rejects all future enqueues and wakes the loop.
// Tasks already accepted remain in the queue to be drained.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
