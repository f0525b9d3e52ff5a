package enumerator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// dirPerm is the mode of directories created for download destinations.
const dirPerm os.FileMode = 0o755

// Lister streams the remote objects under a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) <-chan store.ListResult
}

// Download enumerates remote objects into download tasks.
type Download struct {
	Lister      Lister
	FS          fs.Filesystem
	Prefix      string
	Destination string
	Filter      Filter
	Logger      *slog.Logger
}

// Run lists every object under Prefix, prepares its destination directory
// and enqueues a task for it.
func (d *Download) Run(ctx context.Context, q *queue.Queue) (err error) {
	defer q.MarkProducingDone()
	defer func() {
		if err != nil && ctx.Err() == nil {
			q.RecordEnumerationError()
		}
	}()

	results := d.Lister.List(ctx, d.Prefix)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var (
			result store.ListResult
			ok     bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok = <-results:
		}
		if !ok {
			return nil
		}
		if result.Err != nil {
			return fmt.Errorf("list %q: %w", d.Prefix, result.Err)
		}

		if itemErr := d.prepare(q, result.Object); itemErr != nil {
			skipItem(d.Logger, q, result.Object.Key, itemErr)
		}
	}
}

func (d *Download) prepare(q *queue.Queue, obj s3types.Object) error {
	rel := strings.TrimPrefix(obj.Key, d.Prefix)
	if !d.Filter.Allows(rel) {
		return nil
	}
	if strings.Trim(rel, "/") == "" && !strings.HasSuffix(obj.Key, "/") {
		return fmt.Errorf("key %q maps onto the destination folder itself", obj.Key)
	}

	dest := filepath.Join(d.Destination, filepath.FromSlash(rel))
	if err := validation.ValidateWithinRoot(d.Destination, dest); err != nil {
		return err
	}

	// Folder placeholders only materialize their directory.
	if strings.HasSuffix(obj.Key, "/") {
		return d.mkdir(dest)
	}

	if err := d.mkdir(filepath.Dir(dest)); err != nil {
		return err
	}

	q.Enqueue(queue.NewTask(obj, dest))
	return nil
}

func (d *Download) mkdir(dir string) error {
	if err := d.FS.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// Upload walks a local tree into upload tasks.
type Upload struct {
	FS     fs.Filesystem
	Root   string
	Prefix string
	Filter Filter
	Logger *slog.Logger
}

// Run walks Root and enqueues a task for every regular file.
func (u *Upload) Run(ctx context.Context, q *queue.Queue) (err error) {
	defer q.MarkProducingDone()
	defer func() {
		if err != nil && ctx.Err() == nil {
			q.RecordEnumerationError()
		}
	}()

	info, err := u.FS.Stat(u.Root)
	if err != nil {
		return fmt.Errorf("walk root %s: %w", u.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("walk root %s: not a directory", u.Root)
	}

	err = u.FS.Walk(u.Root, func(localPath string, info os.FileInfo, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if walkErr != nil {
			skipItem(u.Logger, q, localPath, walkErr)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if itemErr := u.prepare(q, localPath, info); itemErr != nil {
			skipItem(u.Logger, q, localPath, itemErr)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("walk %s: %w", u.Root, err)
	}
	return nil
}

func (u *Upload) prepare(q *queue.Queue, localPath string, info os.FileInfo) error {
	rel, err := filepath.Rel(u.Root, localPath)
	if err != nil {
		return fmt.Errorf("relative path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if !u.Filter.Allows(rel) {
		return nil
	}

	key := path.Join(u.Prefix, rel)
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	q.Enqueue(queue.NewTask(s3types.Object{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, localPath))
	return nil
}

func skipItem(logger *slog.Logger, q *queue.Queue, item string, err error) {
	q.RecordEnumerationError()
	logger.Error("skipping item",
		"item", item,
		"error", fmt.Errorf("%w: %w", s3errors.ErrEnumerationItem, err),
	)
}
