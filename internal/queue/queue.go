package queue

import (
	"container/list"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// Queue is a thread-safe FIFO of pending tasks plus the run counters.
// No operation blocks; consumers wait on Notify instead of polling.
type Queue struct {
	mu      sync.Mutex
	pending *list.List
	stats   s3types.Stats

	producing    bool
	allProcessed bool

	notify chan struct{}
	done   chan struct{}
}

// New creates an empty queue whose producer is considered active.
func New() *Queue {
	return &Queue{
		pending:   list.New(),
		producing: true,
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Enqueue appends a task. Tasks on their first attempt also count as discovered.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	q.pending.PushBack(task)
	q.stats.Enqueued++
	if task.Attempt <= 1 {
		q.stats.Discovered++
	}
	q.mu.Unlock()

	q.Wake()
}

// Dequeue removes and returns the head of the queue.
// It returns false immediately when nothing is pending.
func (q *Queue) Dequeue() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.pending.Front()
	if front == nil {
		return Task{}, false
	}
	q.pending.Remove(front)
	q.stats.Dequeued++
	return front.Value.(Task), true
}

// Drain removes every pending task without counting them as dequeued.
// It is used on cancellation, where pending work is abandoned.
func (q *Queue) Drain() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := make([]Task, 0, q.pending.Len())
	for e := q.pending.Front(); e != nil; e = e.Next() {
		tasks = append(tasks, e.Value.(Task))
	}
	q.pending.Init()
	q.stats.Abandoned += int64(len(tasks))
	return tasks
}

// IsEmpty reports whether no task is pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// MarkProducingDone records that the enumerator has finished.
// The transition is one-way; repeated calls are no-ops.
func (q *Queue) MarkProducingDone() {
	q.mu.Lock()
	q.producing = false
	q.mu.Unlock()

	q.Wake()
}

// IsProducing reports whether the enumerator is still active.
func (q *Queue) IsProducing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.producing
}

// MarkAllProcessed records that the pool has drained the queue after the
// enumerator finished, and releases everyone waiting on Done.
func (q *Queue) MarkAllProcessed() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.allProcessed {
		return
	}
	q.allProcessed = true
	close(q.done)
}

// AllProcessed reports whether MarkAllProcessed has been called.
func (q *Queue) AllProcessed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.allProcessed
}

// Done returns a channel that is closed once all tasks have been processed.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Notify returns the wake-up channel. A receive means the queue state may
// have changed; the receiver must re-check. Signals coalesce.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Wake signals Notify without blocking.
func (q *Queue) Wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// RecordTransferred counts a successful transfer of n bytes.
func (q *Queue) RecordTransferred(n int64) {
	q.mu.Lock()
	q.stats.Transferred++
	q.stats.BytesTransferred += n
	q.mu.Unlock()
}

// RecordSkipped counts a task whose destination already matched.
func (q *Queue) RecordSkipped() {
	q.mu.Lock()
	q.stats.Skipped++
	q.mu.Unlock()
}

// RecordFailed counts a task dropped after exhausting its retries.
func (q *Queue) RecordFailed() {
	q.mu.Lock()
	q.stats.Failed++
	q.mu.Unlock()
}

// RecordAbandoned counts a task left unfinished because the run was canceled.
func (q *Queue) RecordAbandoned() {
	q.mu.Lock()
	q.stats.Abandoned++
	q.mu.Unlock()
}

// RecordEnumerationError counts an item the enumerator could not prepare.
func (q *Queue) RecordEnumerationError() {
	q.mu.Lock()
	q.stats.EnumerationErrors++
	q.mu.Unlock()
}

// Stats returns a consistent snapshot of every counter.
func (q *Queue) Stats() s3types.Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}
