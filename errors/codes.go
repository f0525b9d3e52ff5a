package errors

import (
	"context"
	"errors"
)

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and structured logging.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested object or bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Infrastructure errors.

	// CodeNetwork indicates the object store could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates the operation was canceled by the caller.
	CodeCanceled ErrorCode = "CANCELED"

	// Sync errors.

	// CodeEnumerationFailed indicates a discovered item could not be prepared.
	CodeEnumerationFailed ErrorCode = "ENUMERATION_FAILED"

	// CodeSyncCheckFailed indicates a digest could not be computed or resolved.
	CodeSyncCheckFailed ErrorCode = "SYNC_CHECK_FAILED"

	// CodeTransferFailed indicates a get or put failed.
	CodeTransferFailed ErrorCode = "TRANSFER_FAILED"

	// CodeRetryExhausted indicates a task exceeded its retry ceiling.
	CodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// codeTable is checked in order; the first sentinel found in the chain wins.
var codeTable = []struct {
	target error
	code   ErrorCode
}{
	{ErrObjectNotFound, CodeNotFound},
	{ErrBucketNotFound, CodeNotFound},
	{ErrAccessDenied, CodeForbidden},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrInvalidBucketName, CodeInvalidInput},
	{ErrInvalidObjectKey, CodeInvalidInput},
	{ErrConnection, CodeNetwork},
	{context.DeadlineExceeded, CodeTimeout},
	{context.Canceled, CodeCanceled},
	{ErrRetryExhausted, CodeRetryExhausted},
	{ErrEnumerationItem, CodeEnumerationFailed},
	{ErrSyncCheck, CodeSyncCheckFailed},
	{ErrTransfer, CodeTransferFailed},
}

// CodeOf returns the ErrorCode classifying err.
// Nil errors return an empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.target) {
			return entry.code
		}
	}
	return CodeUnknown
}

// IsRetryable reports whether another attempt at the failed operation could succeed.
// Permission, validation, missing-bucket and cancellation failures are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case CodeForbidden, CodeInvalidInput, CodeCanceled:
		return false
	}
	return !errors.Is(err, ErrBucketNotFound)
}
