package reporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// DefaultInterval is the time between two progress lines.
const DefaultInterval = 10 * time.Second

// Source is a read-only view of the queue.
type Source interface {
	Stats() s3types.Stats
	Done() <-chan struct{}
}

// Reporter logs progress until the queue is fully processed or ctx ends.
type Reporter struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Run logs a progress line every Interval and a summary line on exit.
func (r *Reporter) Run(ctx context.Context, src Source) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ticker.C:
			r.Logger.Info("progress", attrs(src.Stats(), time.Since(start))...)
		case <-src.Done():
			r.Logger.Info("all tasks processed", attrs(src.Stats(), time.Since(start))...)
			return
		case <-ctx.Done():
			r.Logger.Info("stopped", attrs(src.Stats(), time.Since(start))...)
			return
		}
	}
}

func attrs(s s3types.Stats, elapsed time.Duration) []any {
	return []any{
		"discovered", s.Discovered,
		"enqueued", s.Enqueued,
		"dequeued", s.Dequeued,
		"transferred", s.Transferred,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"abandoned", s.Abandoned,
		"enumeration_errors", s.EnumerationErrors,
		"bytes", humanize.Bytes(uint64(max(s.BytesTransferred, 0))),
		"elapsed", elapsed.Round(time.Second).String(),
	}
}
