package splitter

import (
	"sync"

	"github.com/wegman-software/coastline-tiler/internal/cellid"
)

// queue is the shared FIFO of cell tasks plus the in-progress counter
// the worker pool uses to detect quiescence: the pool is done exactly
// when the queue is empty and no worker currently holds a task,
// because only a worker holding a task can ever push more work onto
// the queue (a subdivided cell's children).
//
// Every decrement of inProgress broadcasts the condition variable,
// even when the queue is still empty: a decrement might be the very
// last one, and every other waiter needs the chance to notice
// quiescence rather than block forever on a push that will never come.
type queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	tasks []cellid.ID

	inProgress int
	emitted    int
}

func newQueue(seed []cellid.ID) *queue {
	q := &queue{tasks: seed}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// pop blocks until a task is available or the queue has reached
// quiescence, in which case it returns ok=false and the caller should
// exit.
func (q *queue) pop() (cellid.ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 {
		if q.inProgress == 0 {
			return cellid.ID{}, false
		}
		q.cond.Wait()
	}

	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	q.inProgress++
	return task, true
}

// push enqueues newly subdivided children. Called only while the
// pushing worker's own task is still counted in inProgress, so it
// never races a concurrent quiescence check.
func (q *queue) push(tasks ...cellid.ID) {
	q.mu.Lock()
	q.tasks = append(q.tasks, tasks...)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// done marks one task as finished, optionally counting it toward the
// emitted total, and wakes every waiter so they can re-check for
// quiescence.
func (q *queue) done(emitted bool) {
	q.mu.Lock()
	q.inProgress--
	if emitted {
		q.emitted++
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// snapshot reports the current queue depth, in-flight task count, and
// cells emitted so far, for progress reporting.
func (q *queue) snapshot() (depth, inFlight, emitted int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks), q.inProgress, q.emitted
}
