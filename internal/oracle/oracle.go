package oracle

import (
	"context"
	"fmt"
	"log/slog"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// RemoteInspector resolves remote entity tags. A missing key is reported as
// an error matching errors.IsObjectNotFound.
type RemoteInspector interface {
	FetchETag(ctx context.Context, key string) (string, error)
}

// Oracle compares remote objects and local files for one sync direction.
type Oracle struct {
	direction s3types.Direction
	remote    RemoteInspector
	fs        fs.Filesystem
	partSize  int64
	logger    *slog.Logger
}

// New creates an Oracle. A non-positive partSize selects DefaultPartSize.
func New(
	direction s3types.Direction,
	remote RemoteInspector,
	filesystem fs.Filesystem,
	partSize int64,
	logger *slog.Logger,
) *Oracle {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	return &Oracle{
		direction: direction,
		remote:    remote,
		fs:        filesystem,
		partSize:  partSize,
		logger:    logger,
	}
}

// NeedsTransfer reports whether obj and the file at localPath differ.
func (o *Oracle) NeedsTransfer(ctx context.Context, obj s3types.Object, localPath string) bool {
	if o.direction == s3types.DirectionUpload {
		return o.uploadRequired(ctx, obj, localPath)
	}
	return o.downloadRequired(ctx, obj, localPath)
}

func (o *Oracle) downloadRequired(ctx context.Context, obj s3types.Object, localPath string) bool {
	info, err := o.fs.Stat(localPath)
	if err != nil {
		exists, existsErr := o.fs.Exists(localPath)
		if existsErr == nil && !exists {
			return true
		}
		return o.failOpen(obj, localPath, fmt.Errorf("stat local file: %w", err))
	}
	if info.IsDir() {
		return o.failOpen(obj, localPath, fmt.Errorf("local path is a directory"))
	}

	// Listed objects carry their size; a size change is a content change.
	if obj.ETag != "" && obj.Size != info.Size() {
		return true
	}

	etag := obj.ETag
	if etag == "" {
		etag, err = o.remote.FetchETag(ctx, obj.Key)
		if err != nil {
			return o.failOpen(obj, localPath, fmt.Errorf("fetch remote etag: %w", err))
		}
	}

	return o.compare(obj, etag, localPath)
}

func (o *Oracle) uploadRequired(ctx context.Context, obj s3types.Object, localPath string) bool {
	// One HEAD answers both existence and content.
	etag, err := o.remote.FetchETag(ctx, obj.Key)
	if s3errors.IsObjectNotFound(err) {
		return true
	}
	if err != nil {
		return o.failOpen(obj, localPath, fmt.Errorf("fetch remote etag: %w", err))
	}

	return o.compare(obj, etag, localPath)
}

func (o *Oracle) compare(obj s3types.Object, etag, localPath string) bool {
	f, err := o.fs.Open(localPath)
	if err != nil {
		return o.failOpen(obj, localPath, fmt.Errorf("open local file: %w", err))
	}
	defer f.Close()

	match, err := Match(etag, f, o.partSize)
	if err != nil {
		return o.failOpen(obj, localPath, err)
	}
	return !match
}

func (o *Oracle) failOpen(obj s3types.Object, localPath string, err error) bool {
	o.logger.Warn("sync check failed, transferring",
		"key", obj.Key,
		"path", localPath,
		"error", fmt.Errorf("%w: %w", s3errors.ErrSyncCheck, err),
	)
	return true
}
