// Package s3concurrent provides the public sync API.
package s3concurrent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/enumerator"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/oracle"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/reporter"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/worker"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// producer fills the queue and marks it as done producing when it returns.
type producer func(ctx context.Context, q *queue.Queue) error

// Download copies every object under prefix into destination, skipping
// objects whose local copy already has the same content.
//
// The object at key prefix+"a/b" lands at destination/a/b. Keys ending in "/"
// only create their directory.
//
// Returns:
//   - *SyncResult: counters of the run; Completed is false if any task was
//     abandoned or enumeration hit an error
//   - error: a validation or bucket access error, before any task was
//     created, or the context error if the run was canceled
//
// Example:
//
//	result, err := client.Download(ctx, "logs/2024/", "/var/backups/logs",
//	    s3concurrent.WithThreadCount(20),
//	    s3concurrent.WithExclude("*.tmp"),
//	)
func (c *Client) Download(
	ctx context.Context,
	prefix, destination string,
	opts ...s3types.SyncOption,
) (*s3types.SyncResult, error) {
	if destination == "" {
		return nil, errors.NewValidationError("destination folder cannot be empty")
	}
	absDest, err := fs.GetAbs(destination)
	if err != nil {
		return nil, errors.NewError("download", fmt.Errorf("failed to resolve destination folder: %w", err))
	}

	cfg := newSyncConfig(opts)
	enum := &enumerator.Download{
		Lister:      c.store,
		FS:          c.fs,
		Prefix:      prefix,
		Destination: absDest,
		Filter:      filterOf(cfg),
	}
	return c.run(ctx, s3types.DirectionDownload, prefix, cfg, func(logger *slog.Logger) (producer, worker.Transferer) {
		enum.Logger = logger
		return enum.Run, &downloader{store: c.store, fs: c.fs}
	})
}

// Upload copies every regular file under localFolder to prefix, skipping
// files whose remote object already has the same content.
//
// The file localFolder/a/b lands at key prefix/a/b.
//
// Returns the same result and errors as Download; a missing or non-directory
// localFolder is reported as an enumeration error.
func (c *Client) Upload(
	ctx context.Context,
	localFolder, prefix string,
	opts ...s3types.SyncOption,
) (*s3types.SyncResult, error) {
	if localFolder == "" {
		return nil, errors.NewValidationError("local folder cannot be empty")
	}
	absRoot, err := fs.GetAbs(localFolder)
	if err != nil {
		return nil, errors.NewError("upload", fmt.Errorf("failed to resolve local folder: %w", err))
	}

	cfg := newSyncConfig(opts)
	enum := &enumerator.Upload{
		FS:     c.fs,
		Root:   absRoot,
		Prefix: prefix,
		Filter: filterOf(cfg),
	}
	return c.run(ctx, s3types.DirectionUpload, prefix, cfg, func(logger *slog.Logger) (producer, worker.Transferer) {
		enum.Logger = logger
		return enum.Run, &uploader{store: c.store, fs: c.fs}
	})
}

func newSyncConfig(opts []s3types.SyncOption) *s3types.SyncOptionConfig {
	cfg := &s3types.SyncOptionConfig{
		ThreadCount:    worker.DefaultConcurrency,
		MaxRetry:       worker.DefaultMaxRetry,
		BackoffUnit:    worker.DefaultBackoffUnit,
		ReportInterval: reporter.DefaultInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func filterOf(cfg *s3types.SyncOptionConfig) enumerator.Filter {
	return enumerator.Filter{
		Include: cfg.IncludePatterns,
		Exclude: cfg.ExcludePatterns,
	}
}

// run validates the run, checks the bucket, then runs the enumerator, the
// worker pool and the reporter against a fresh queue until the pool returns.
func (c *Client) run(
	ctx context.Context,
	direction s3types.Direction,
	prefix string,
	cfg *s3types.SyncOptionConfig,
	build func(logger *slog.Logger) (producer, worker.Transferer),
) (*s3types.SyncResult, error) {
	if err := c.validate(prefix, cfg); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := c.logger.With(
		"run_id", runID,
		"direction", string(direction),
		"bucket", c.store.Bucket(),
	)

	if err := c.store.CheckBucket(ctx); err != nil {
		logger.Error("bucket is not reachable", "error", err)
		return nil, err
	}

	produce, transferer := build(logger)
	q := queue.New()
	start := time.Now()
	logger.Info("sync started", "prefix", prefix, "threads", cfg.ThreadCount, "max_retry", cfg.MaxRetry)

	var enumErr error
	enumDone := make(chan struct{})
	go func() {
		defer close(enumDone)
		enumErr = produce(ctx, q)
	}()

	reportCtx, stopReport := context.WithCancel(ctx)
	reportDone := make(chan struct{})
	go func() {
		defer close(reportDone)
		(&reporter.Reporter{Interval: cfg.ReportInterval, Logger: logger}).Run(reportCtx, q)
	}()

	pool := &worker.Pool{
		Concurrency: cfg.ThreadCount,
		MaxRetry:    cfg.MaxRetry,
		BackoffUnit: cfg.BackoffUnit,
		Checker:     oracle.New(direction, c.store, c.fs, c.partSize, logger),
		Transferer:  transferer,
		Logger:      logger,
	}
	poolErr := pool.Run(ctx, q)

	<-enumDone
	// Tasks the enumerator pushed after the pool stopped are abandoned too.
	q.Drain()
	stopReport()
	<-reportDone

	stats := q.Stats()
	result := &s3types.SyncResult{
		RunID:          runID,
		Direction:      direction,
		Completed:      q.AllProcessed() && stats.EnumerationErrors == 0,
		Stats:          stats,
		EnumerationErr: ignoreCanceled(ctx, enumErr),
		Duration:       time.Since(start),
	}

	if result.EnumerationErr != nil {
		logger.Error("enumeration ended early", "error", result.EnumerationErr)
	}
	logger.Info("sync finished",
		"completed", result.Completed,
		"transferred", stats.Transferred,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"abandoned", stats.Abandoned,
		"duration", result.Duration.Round(time.Millisecond).String(),
	)

	if poolErr != nil {
		return result, errors.NewError(string(direction), poolErr)
	}
	return result, nil
}

func (c *Client) validate(prefix string, cfg *s3types.SyncOptionConfig) error {
	if err := validation.ValidateSyncParams(validation.SyncParams{
		ThreadCount: cfg.ThreadCount,
		MaxRetry:    cfg.MaxRetry,
		PartSize:    c.partSize,
	}); err != nil {
		return err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return err
	}
	if err := validation.ValidatePatterns(cfg.IncludePatterns); err != nil {
		return err
	}
	return validation.ValidatePatterns(cfg.ExcludePatterns)
}

func ignoreCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
