package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// Defaults for a Pool.
const (
	DefaultConcurrency = 10
	DefaultMaxRetry    = 10
	DefaultBackoffUnit = time.Second
)

// Checker decides whether a task needs a transfer.
type Checker interface {
	NeedsTransfer(ctx context.Context, obj s3types.Object, localPath string) bool
}

// Transferer moves the bytes of one task and returns how many were moved.
type Transferer interface {
	Transfer(ctx context.Context, task queue.Task) (int64, error)
}

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pool processes queue tasks with at most Concurrency workers.
type Pool struct {
	Concurrency int
	MaxRetry    int
	BackoffUnit time.Duration
	Checker     Checker
	Transferer  Transferer
	Logger      *slog.Logger

	// Sleep is used for retry backoff. Nil means a context-aware timer.
	Sleep SleepFunc
}

// Run drains q until the enumerator is done, the queue is empty and no worker
// is in flight, then marks the queue as all processed.
//
// On cancellation Run stops dequeuing, waits for in-flight workers, records
// pending tasks as abandoned and returns the context error. The queue is not
// marked as all processed in that case.
func (p *Pool) Run(ctx context.Context, q *queue.Queue) error {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		slots    = make(chan struct{}, concurrency)
		wg       sync.WaitGroup
		inFlight atomic.Int64
	)

	for {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return p.stop(ctx, q, &wg)
		}
		if ctx.Err() != nil {
			<-slots
			return p.stop(ctx, q, &wg)
		}

		if task, ok := q.Dequeue(); ok {
			inFlight.Add(1)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					inFlight.Add(-1)
					<-slots
					q.Wake()
				}()
				p.process(ctx, q, task)
			}()
			continue
		}
		<-slots

		// Order matters: once no worker is in flight nothing can re-enqueue,
		// so the emptiness check that follows is final.
		if !q.IsProducing() && inFlight.Load() == 0 && q.IsEmpty() {
			q.MarkAllProcessed()
			return nil
		}

		select {
		case <-q.Notify():
		case <-ctx.Done():
			return p.stop(ctx, q, &wg)
		}
	}
}

func (p *Pool) stop(ctx context.Context, q *queue.Queue, wg *sync.WaitGroup) error {
	wg.Wait()
	if abandoned := q.Drain(); len(abandoned) > 0 {
		p.Logger.Warn("run canceled, abandoning pending tasks", "count", len(abandoned))
	}
	return ctx.Err()
}

func (p *Pool) process(ctx context.Context, q *queue.Queue, task queue.Task) {
	logger := p.Logger.With("key", task.Object.Key, "path", task.Path, "attempt", task.Attempt)

	if task.Attempt > p.maxRetry() {
		q.RecordFailed()
		logger.Error("giving up on task",
			"error", fmt.Errorf("%w after %d attempts", s3errors.ErrRetryExhausted, p.maxRetry()))
		return
	}

	if ctx.Err() != nil {
		q.RecordAbandoned()
		return
	}

	if !p.Checker.NeedsTransfer(ctx, task.Object, task.Path) {
		q.RecordSkipped()
		logger.Debug("already in sync, skipping")
		return
	}

	if task.Attempt > 1 {
		wait := Backoff(task.Attempt, p.backoffUnit())
		logger.Info("retrying task", "wait", wait)
		if err := p.sleep(ctx, wait); err != nil {
			q.RecordAbandoned()
			logger.Warn("retry interrupted", "error", err)
			return
		}
	}

	// An in-flight transfer is allowed to finish after cancellation.
	n, err := p.Transferer.Transfer(context.WithoutCancel(ctx), task)
	if err != nil {
		err = fmt.Errorf("%w: %w", s3errors.ErrTransfer, err)
		if ctx.Err() != nil {
			q.RecordAbandoned()
			logger.Warn("transfer failed after cancellation, not retrying", "error", err)
			return
		}
		logger.Warn("transfer failed, requeueing",
			"error", err,
			"code", s3errors.CodeOf(err),
			"retryable", s3errors.IsRetryable(err),
		)
		q.Enqueue(task.Retry())
		return
	}

	q.RecordTransferred(n)
	logger.Debug("transferred", "bytes", n)
}

// Backoff returns the wait before the given attempt: attempt² units.
func Backoff(attempt int, unit time.Duration) time.Duration {
	return time.Duration(attempt*attempt) * unit
}

func (p *Pool) maxRetry() int {
	if p.MaxRetry <= 0 {
		return DefaultMaxRetry
	}
	return p.MaxRetry
}

func (p *Pool) backoffUnit() time.Duration {
	if p.BackoffUnit <= 0 {
		return DefaultBackoffUnit
	}
	return p.BackoffUnit
}

func (p *Pool) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
