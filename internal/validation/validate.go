package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

// S3 multipart limits.
const (
	MinPartSize int64 = 5 * 1024 * 1024
	MaxPartSize int64 = 5 * 1024 * 1024 * 1024
)

// maxKeyLength is the longest object key S3 accepts, in bytes.
const maxKeyLength = 1024

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return bucketError(bucket, "bucket name cannot be empty")
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return bucketError(bucket, "bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return bucketError(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return bucketError(bucket, "bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return bucketError(bucket, "bucket name cannot be formatted as an IP address")
	}

	if strings.Contains(bucket, "..") {
		return bucketError(bucket, "bucket name cannot contain two adjacent periods")
	}

	return nil
}

func bucketError(bucket, msg string) error {
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(msg)
}

// ValidateObjectKey validates that an object key is valid according to AWS S3 rules.
// Keys must be non-empty, at most 1024 bytes, free of control characters and of
// ".." path segments.
func ValidateObjectKey(key string) error {
	if key == "" {
		return keyError(key, "object key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return keyError(key, "object key cannot exceed 1024 bytes")
	}

	if hasControlCharacters(key) {
		return keyError(key, "object key cannot contain control characters")
	}

	if hasParentSegment(key) {
		return keyError(key, "object key cannot contain path traversal sequences")
	}

	return nil
}

func keyError(key, msg string) error {
	return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
		WithKey(key).
		WithMessage(msg)
}

// ValidatePrefix validates a key prefix. The empty prefix selects the whole bucket.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if len(prefix) > maxKeyLength {
		return errors.NewValidationError("prefix cannot exceed 1024 bytes")
	}
	if hasControlCharacters(prefix) {
		return errors.NewValidationError("prefix cannot contain control characters")
	}
	if hasParentSegment(prefix) {
		return errors.NewValidationError("prefix cannot contain path traversal sequences")
	}
	return nil
}

// ValidateWithinRoot checks that target, once cleaned, stays inside root.
// It guards local destinations derived from remote keys.
func ValidateWithinRoot(root, target string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return errors.NewError("validatePath", errors.ErrInvalidObjectKey).WithKey(target).WithMessage(err.Error())
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.NewError("validatePath", errors.ErrInvalidObjectKey).
			WithKey(target).
			WithMessage(fmt.Sprintf("path escapes %s", root))
	}
	return nil
}

// SyncParams are the tunables of a sync run.
type SyncParams struct {
	ThreadCount int
	MaxRetry    int
	PartSize    int64
}

// ValidateSyncParams validates the tunables of a sync run.
func ValidateSyncParams(p SyncParams) error {
	if p.ThreadCount < 1 {
		return errors.NewValidationError(fmt.Sprintf("thread count must be at least 1, got %d", p.ThreadCount))
	}
	if p.MaxRetry < 1 {
		return errors.NewValidationError(fmt.Sprintf("max retry must be at least 1, got %d", p.MaxRetry))
	}
	if p.PartSize < MinPartSize || p.PartSize > MaxPartSize {
		return errors.NewValidationError(
			fmt.Sprintf("part size must be between %d and %d bytes, got %d", MinPartSize, MaxPartSize, p.PartSize))
	}
	return nil
}

// ValidatePatterns checks that every include or exclude glob is well formed.
func ValidatePatterns(patterns []string) error {
	for i, pattern := range patterns {
		for _, part := range strings.Split(pattern, "**") {
			if _, err := path.Match(part, "dummy"); err != nil {
				return errors.NewValidationError(fmt.Sprintf("invalid pattern at index %d '%s': %v", i, pattern, err))
			}
		}
	}
	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIPAddress checks if a string is formatted as an IPv4 address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasParentSegment reports whether any slash or backslash separated segment is "..".
func hasParentSegment(key string) bool {
	segments := strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, segment := range segments {
		if segment == ".." {
			return true
		}
	}
	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
