// Package s3concurrent provides functional options for configuring the client
// and individual sync runs.
package s3concurrent

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// WithBackend selects the object store implementation.
// Default is BackendAWS.
func WithBackend(backend s3types.Backend) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Backend = backend
	}
}

// WithRegion sets the region of the bucket.
// If not specified, uses the region from the AWS credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials sets static credentials. Empty values fall back to the
// default credential chain.
func WithCredentials(accessKeyID, secretAccessKey string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithDisableSSL uses plain HTTP for endpoints given without a scheme.
func WithDisableSSL(disableSSL bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.DisableSSL = disableSSL
	}
}

// WithMaxRetries sets the SDK-level retry attempts of each API call.
// These are independent of the per-task retries of a sync run.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithPartSize sets the multipart part size used both for uploads and for
// computing multipart entity tags. Default is 8MB; S3 requires at least 5MB.
func WithPartSize(partSize int64) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithAWSConfig provides a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets the local filesystem implementation.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger. If not specified, logs are discarded.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithThreadCount sets the number of concurrent workers of a run.
func WithThreadCount(n int) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		c.ThreadCount = n
	}
}

// WithMaxRetry sets how many times a task is attempted before it is dropped.
func WithMaxRetry(n int) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		c.MaxRetry = n
	}
}

// WithBackoffUnit sets the unit of the quadratic retry backoff.
func WithBackoffUnit(unit time.Duration) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		if unit > 0 {
			c.BackoffUnit = unit
		}
	}
}

// WithReportInterval sets the time between two progress lines.
func WithReportInterval(interval time.Duration) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		if interval > 0 {
			c.ReportInterval = interval
		}
	}
}

// WithInclude restricts the run to paths matching at least one pattern.
// Patterns are matched against the path relative to the prefix or folder.
func WithInclude(patterns ...string) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithExclude skips paths matching any pattern. Excludes win over includes.
func WithExclude(patterns ...string) s3types.SyncOption {
	return func(c *s3types.SyncOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}
