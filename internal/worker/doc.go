// Package worker drains the task queue with a bounded pool of goroutines.
//
// A supervisor acquires a slot, dequeues a task and hands both to a worker.
// Failed transfers go back to the queue with the next attempt number and are
// retried after a quadratic backoff until the retry ceiling is reached.
package worker
