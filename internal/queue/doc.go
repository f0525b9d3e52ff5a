// Package queue provides the shared task queue of a sync run.
//
// The Queue is the single piece of mutable state shared by the enumerator,
// the pool supervisor, its workers and the progress reporter. Every pending
// task, counter and flag lives behind one mutex.
package queue
