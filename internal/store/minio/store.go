package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// DefaultPartSize is the multipart part size used when none is configured.
const DefaultPartSize uint64 = 8 * 1024 * 1024

// API is the subset of *minio.Client used by Store.
type API interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(
		ctx context.Context,
		bucket, key string,
		reader io.Reader,
		size int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

var _ API = (*minio.Client)(nil)

// Config holds the connection settings of a MinIO client.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Secure          bool
	PathStyle       bool
}

// NewClient builds a minio-go client. The endpoint may be a bare host:port or
// a URL, whose scheme then decides Secure.
func NewClient(cfg Config) (*minio.Client, error) {
	endpoint, secure := cfg.Endpoint, cfg.Secure
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
		}
		endpoint = u.Host
		secure = u.Scheme == "https"
	}
	if endpoint == "" {
		return nil, fmt.Errorf("%w: minio backend requires an endpoint", s3errors.ErrInvalidInput)
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.AccessKeyID == "" {
		opts.Creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
		})
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// Store is an ObjectStore bound to a single bucket.
type Store struct {
	client   API
	bucket   string
	partSize uint64
}

// New creates a Store for bucket. A zero partSize selects DefaultPartSize.
func New(client API, bucket string, partSize uint64) *Store {
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	return &Store{
		client:   client,
		bucket:   bucket,
		partSize: partSize,
	}
}

// Bucket returns the bucket the store is bound to.
func (s *Store) Bucket() string {
	return s.bucket
}

// List streams every object under prefix recursively.
func (s *Store) List(ctx context.Context, prefix string) <-chan store.ListResult {
	results := make(chan store.ListResult)

	go func() {
		defer close(results)

		// Canceling stops the minio listing goroutine when we return early.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		})
		for info := range objects {
			var result store.ListResult
			if info.Err != nil {
				result.Err = s3errors.NewError("list", translateError(info.Err)).WithBucket(s.bucket).WithKey(prefix)
			} else {
				result.Object = s3types.Object{
					Key:          info.Key,
					ETag:         info.ETag,
					Size:         info.Size,
					LastModified: info.LastModified,
				}
			}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
			if result.Err != nil {
				return
			}
		}
	}()

	return results
}

// Exists reports whether key exists in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.stat(ctx, key)
	if err != nil {
		if s3errors.IsObjectNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FetchETag returns the ETag of key. minio-go strips the quotes.
func (s *Store) FetchETag(ctx context.Context, key string) (string, error) {
	info, err := s.stat(ctx, key)
	if err != nil {
		return "", err
	}
	return info.ETag, nil
}

func (s *Store) stat(ctx context.Context, key string) (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, s3errors.NewObjectError("headObject", s.bucket, key, translateError(err))
	}
	return info, nil
}

// Get streams the body of key into w.
func (s *Store) Get(ctx context.Context, key string, w io.Writer) (int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, s3errors.NewObjectError("download", s.bucket, key, translateError(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	// minio defers the request until the first read, so errors surface here.
	n, err := io.Copy(w, obj)
	if err != nil {
		return n, s3errors.NewObjectError("download", s.bucket, key, translateError(err))
	}
	return n, nil
}

// Put uploads size bytes from r under key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		PartSize:    s.partSize,
	})
	if err != nil {
		return s3errors.NewObjectError("upload", s.bucket, key, translateError(err))
	}
	return nil
}

// CheckBucket verifies the bucket exists and the credentials can reach it.
func (s *Store) CheckBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s3errors.NewError("checkBucket", translateError(err)).WithBucket(s.bucket)
	}
	if !ok {
		return s3errors.NewError("checkBucket", s3errors.ErrBucketNotFound).WithBucket(s.bucket)
	}
	return nil
}

// translateError maps MinIO error responses onto the module's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %w", s3errors.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %w", s3errors.ErrBucketNotFound, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %w", s3errors.ErrAccessDenied, err)
	case "InvalidBucketName":
		return fmt.Errorf("%w: %w", s3errors.ErrInvalidBucketName, err)
	}
	return err
}

var _ store.ObjectStore = (*Store)(nil)
