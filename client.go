// Package s3concurrent provides client initialization and configuration.
package s3concurrent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store/awss3"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store/minio"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

const (
	// DefaultPartSize is the multipart part size used when none is configured.
	DefaultPartSize int64 = 8 * 1024 * 1024

	defaultRegion = "us-east-1"
)

// Client synchronizes one bucket with the local filesystem.
// A Client is safe for concurrent use; every run owns its own queue.
type Client struct {
	// store is the bucket the client talks to
	store store.ObjectStore

	// fs is the filesystem abstraction for local file operations
	fs fs.Filesystem

	// partSize is shared by multipart uploads and multipart ETag checks
	partSize int64

	logger *slog.Logger
}

// New creates a client for bucket with the provided options.
// With the AWS backend, credentials are loaded from the default credential
// chain unless static credentials are given.
//
// Example:
//
//	client, err := s3concurrent.New(ctx, "my-bucket",
//	    s3concurrent.WithRegion("us-west-2"),
//	    s3concurrent.WithPartSize(16*1024*1024),
//	)
func New(ctx context.Context, bucket string, opts ...s3types.Option) (*Client, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	cfg := newClientConfig(opts)

	var (
		objectStore store.ObjectStore
		err         error
	)
	switch cfg.Backend {
	case s3types.BackendAWS:
		objectStore, err = newAWSStore(ctx, bucket, cfg)
	case s3types.BackendMinio:
		objectStore, err = newMinioStore(bucket, cfg)
	default:
		err = errors.NewValidationError(fmt.Sprintf("unknown backend %q", cfg.Backend))
	}
	if err != nil {
		return nil, err
	}

	return newClient(objectStore, cfg), nil
}

// NewWithStore creates a client on top of an existing object store.
// This is primarily used for testing with in-memory stores.
func NewWithStore(objectStore store.ObjectStore, opts ...s3types.Option) *Client {
	return newClient(objectStore, newClientConfig(opts))
}

func newClientConfig(opts []s3types.Option) *s3types.ClientConfig {
	cfg := &s3types.ClientConfig{
		Backend:  s3types.BackendAWS,
		PartSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newClient(objectStore store.ObjectStore, cfg *s3types.ClientConfig) *Client {
	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewBaseOSFS()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		store:    objectStore,
		fs:       filesystem,
		partSize: cfg.PartSize,
		logger:   logger,
	}
}

func newAWSStore(ctx context.Context, bucket string, clientCfg *s3types.ClientConfig) (*awss3.Store, error) {
	var awsCfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		awsCfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKeyID, clientCfg.SecretAccessKey, ""),
			))
		}

		var err error
		awsCfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		awsCfg.Region = clientCfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.Endpoint != "" {
		endpoint := endpointURL(clientCfg.Endpoint, clientCfg.DisableSSL)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return awss3.New(client, bucket, awss3.WithPartSize(clientCfg.PartSize)), nil
}

func newMinioStore(bucket string, cfg *s3types.ClientConfig) (*minio.Store, error) {
	client, err := minio.NewClient(minio.Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Region:          cfg.Region,
		Secure:          !cfg.DisableSSL,
		PathStyle:       cfg.ForcePathStyle,
	})
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}
	return minio.New(client, bucket, uint64(max(cfg.PartSize, 0))), nil
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(endpoint string, disableSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if disableSSL {
		return "http://" + endpoint
	}
	return "https://" + endpoint
}

// Bucket returns the bucket the client is bound to.
func (c *Client) Bucket() string {
	return c.store.Bucket()
}
