// Package sched is the deferred task queue drained once per world tick.
package sched

// Task runs on the world goroutine at the next drain.
type Task func()

type entry struct {
	key string
	fn  Task
}

// Queue is a single-worker FIFO. Tasks share one global order, so tasks for
// the same resource key run in the order they were enqueued.
// Queue is not safe for concurrent use; the world loop owns it.
type Queue struct {
	tasks []entry
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(key string, fn Task) {
	if fn == nil {
		return
	}
	q.tasks = append(q.tasks, entry{key: key, fn: fn})
}

// Drain runs the tasks queued before the call. Tasks enqueued while draining
// wait for the next drain. It returns the keys of the tasks run, in order.
func (q *Queue) Drain() []string {
	batch := q.tasks
	q.tasks = nil
	keys := make([]string, 0, len(batch))
	for _, e := range batch {
		e.fn()
		keys = append(keys, e.key)
	}
	return keys
}
