package s3concurrent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
)

// downloader writes an object next to its destination and renames it into
// place, so an interrupted transfer never leaves a truncated file at Path.
type downloader struct {
	store store.ObjectStore
	fs    fs.Filesystem
}

func (d *downloader) Transfer(ctx context.Context, task queue.Task) (int64, error) {
	tmp := fmt.Sprintf("%s.%s.part", task.Path, uuid.NewString())

	f, err := d.fs.Create(tmp)
	if err != nil {
		return 0, d.error(task, fmt.Errorf("create %s: %w", tmp, err))
	}

	n, err := d.store.Get(ctx, task.Object.Key, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", tmp, closeErr)
	}
	if err == nil {
		err = d.fs.Rename(tmp, task.Path)
	}
	if err != nil {
		_ = d.fs.Remove(tmp)
		return 0, d.error(task, err)
	}
	return n, nil
}

func (d *downloader) error(task queue.Task, err error) error {
	return errors.NewObjectError("download", d.store.Bucket(), task.Object.Key, err)
}

// uploader streams a local file to its key.
type uploader struct {
	store store.ObjectStore
	fs    fs.Filesystem
}

func (u *uploader) Transfer(ctx context.Context, task queue.Task) (int64, error) {
	f, err := u.fs.Open(task.Path)
	if err != nil {
		return 0, u.error(task, err)
	}
	defer f.Close()

	// The size may have changed since the walk.
	info, err := f.Stat()
	if err != nil {
		return 0, u.error(task, err)
	}

	if err := u.store.Put(ctx, task.Object.Key, f, info.Size()); err != nil {
		return 0, u.error(task, err)
	}
	return info.Size(), nil
}

func (u *uploader) error(task queue.Task, err error) error {
	return errors.NewObjectError("upload", u.store.Bucket(), task.Object.Key, err)
}
