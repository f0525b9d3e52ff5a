package queue

import "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"

// Task is one pending transfer: a remote object, the local file it maps to,
// and the attempt number, starting at 1.
type Task struct {
	Object  s3types.Object
	Path    string
	Attempt int
}

// NewTask returns a first-attempt task.
func NewTask(obj s3types.Object, path string) Task {
	return Task{
		Object:  obj,
		Path:    path,
		Attempt: 1,
	}
}

// Retry returns the task for the next attempt.
func (t Task) Retry() Task {
	t.Attempt++
	return t
}
