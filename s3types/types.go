// Package s3types provides shared type definitions for the s3concurrent module.
package s3types

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
)

// Object is a reference to a remote object.
// An empty ETag means the digest has not been resolved yet.
type Object struct {
	// Key is the object key (path)
	Key string

	// ETag is the entity tag as reported by the store, quotes included or not
	ETag string

	// Size is the object size in bytes, when known
	Size int64

	// LastModified is when the object was last modified, when known
	LastModified time.Time
}

// Direction is the way bytes flow during a sync run.
type Direction string

const (
	// DirectionDownload copies remote objects into a local folder.
	DirectionDownload Direction = "download"

	// DirectionUpload copies a local folder to a remote prefix.
	DirectionUpload Direction = "upload"
)

// Backend selects the object store client implementation.
type Backend string

const (
	// BackendAWS talks to S3 through aws-sdk-go-v2.
	BackendAWS Backend = "aws"

	// BackendMinio talks to S3-compatible stores through minio-go.
	BackendMinio Backend = "minio"
)

// Stats is a snapshot of the run counters.
type Stats struct {
	// Discovered counts unique items produced by the enumerator.
	Discovered int64

	// Enqueued counts every enqueue event, retries included.
	Enqueued int64

	// Dequeued counts every task handed to a worker.
	Dequeued int64

	// Transferred counts tasks whose transfer succeeded.
	Transferred int64

	// Skipped counts tasks whose destination already matched.
	Skipped int64

	// Failed counts tasks dropped after exhausting their retries.
	Failed int64

	// Abandoned counts tasks left unfinished because the run was canceled.
	Abandoned int64

	// EnumerationErrors counts items the enumerator could not prepare.
	EnumerationErrors int64

	// BytesTransferred is the total payload moved by successful transfers.
	BytesTransferred int64
}

// SyncResult contains the result of a download or upload run.
type SyncResult struct {
	// RunID correlates the run's log lines.
	RunID string

	// Direction is the direction of the run.
	Direction Direction

	// Completed is true iff every task was processed and enumeration
	// finished without error.
	Completed bool

	// Stats holds the final counters.
	Stats Stats

	// EnumerationErr is the error that ended enumeration early, if any.
	EnumerationErr error

	// Duration is how long the run took.
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	Backend         Backend
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
	DisableSSL      bool
	MaxRetries      int
	PartSize        int64
	CustomAWSConfig *aws.Config
	Filesystem      fs.Filesystem
	Logger          *slog.Logger
}

// SyncOptionConfig holds configuration for a sync run via functional options.
type SyncOptionConfig struct {
	ThreadCount     int
	MaxRetry        int
	BackoffUnit     time.Duration
	ReportInterval  time.Duration
	IncludePatterns []string
	ExcludePatterns []string
}

// Option is a functional option for configuring the client.
type (
	Option func(*ClientConfig)
	// SyncOption is a functional option for configuring a sync run.
	SyncOption func(*SyncOptionConfig)
)
