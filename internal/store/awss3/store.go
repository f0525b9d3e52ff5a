package awss3

import (
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
)

// DefaultPartSize is the multipart part size used when none is configured.
const DefaultPartSize int64 = 8 * 1024 * 1024

// Store is an ObjectStore bound to a single bucket.
type Store struct {
	client   s3api.S3API
	bucket   string
	partSize int64
	uploader *manager.Uploader
}

// Option configures a Store.
type Option func(*Store)

// WithPartSize sets the multipart upload part size in bytes.
func WithPartSize(size int64) Option {
	return func(s *Store) {
		if size > 0 {
			s.partSize = size
		}
	}
}

// New creates a Store for bucket using the given S3 client.
func New(client s3api.S3API, bucket string, opts ...Option) *Store {
	s := &Store{
		client:   client,
		bucket:   bucket,
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.uploader = manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = s.partSize
	})

	return s
}

// Bucket returns the bucket the store is bound to.
func (s *Store) Bucket() string {
	return s.bucket
}

// PartSize returns the multipart part size used for uploads.
func (s *Store) PartSize() int64 {
	return s.partSize
}

var _ store.ObjectStore = (*Store)(nil)
