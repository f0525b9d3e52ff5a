package store

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// ListResult is one item of a listing stream.
// Exactly one of Object and Err is meaningful.
type ListResult struct {
	Object s3types.Object
	Err    error
}

// ObjectStore is a single bucket of a remote object store.
type ObjectStore interface {
	// Bucket returns the bucket name the store is bound to.
	Bucket() string

	// List streams every object under prefix. The channel is closed when the
	// listing ends; a result carrying Err ends the listing.
	List(ctx context.Context, prefix string) <-chan ListResult

	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// FetchETag returns the entity tag of key as reported by the store.
	FetchETag(ctx context.Context, key string) (string, error)

	// Get streams the body of key into w and returns the number of bytes written.
	Get(ctx context.Context, key string, w io.Writer) (int64, error)

	// Put stores size bytes read from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// CheckBucket verifies the bucket exists and is reachable.
	CheckBucket(ctx context.Context) error
}
