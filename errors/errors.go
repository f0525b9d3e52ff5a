// Package errors provides error types and handling for s3concurrent operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a sync operation error with context about the operation that failed.
// It wraps the underlying store, filesystem or SDK error with the bucket and key involved.
type Error struct {
	// Op is the operation that failed (e.g., "download", "upload", "enumerate")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key or local path (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3concurrent.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3concurrent.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3concurrent.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3concurrent.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key (or local path) context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// NewValidationError creates an Error wrapping ErrInvalidInput with the given message.
func NewValidationError(message string) *Error {
	return NewError("validate", ErrInvalidInput).WithMessage(message)
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3concurrent: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3concurrent: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3concurrent: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3concurrent: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3concurrent: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3concurrent: invalid object key")

	// ErrConnection indicates that the object store could not be reached
	ErrConnection = errors.New("s3concurrent: connection error")

	// ErrEnumerationItem marks a failure preparing a single discovered item.
	// The item is skipped and enumeration continues.
	ErrEnumerationItem = errors.New("s3concurrent: enumeration item failed")

	// ErrSyncCheck marks a failure computing or resolving a content digest.
	// The comparison fails open and the transfer happens.
	ErrSyncCheck = errors.New("s3concurrent: sync check failed")

	// ErrTransfer marks a failed get or put. The task is retried.
	ErrTransfer = errors.New("s3concurrent: transfer failed")

	// ErrRetryExhausted marks a task dropped after exceeding the retry ceiling.
	ErrRetryExhausted = errors.New("s3concurrent: retries exhausted")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey)
}
