package awss3

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

// translateError maps AWS API errors onto the module's sentinel errors.
// Unknown errors are returned unchanged. bucketOp selects whether a bare
// "NotFound" refers to the bucket (HeadBucket) or to an object.
func translateError(err error, bucketOp bool) error {
	if err == nil {
		return nil
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return wrap(s3errors.ErrBucketNotFound, err)
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return wrap(s3errors.ErrObjectNotFound, err)
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		if bucketOp {
			return wrap(s3errors.ErrBucketNotFound, err)
		}
		return wrap(s3errors.ErrObjectNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return wrap(s3errors.ErrBucketNotFound, err)
		case "NoSuchKey":
			return wrap(s3errors.ErrObjectNotFound, err)
		case "NotFound":
			if bucketOp {
				return wrap(s3errors.ErrBucketNotFound, err)
			}
			return wrap(s3errors.ErrObjectNotFound, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return wrap(s3errors.ErrAccessDenied, err)
		case "InvalidBucketName":
			return wrap(s3errors.ErrInvalidBucketName, err)
		}
	}

	return err
}

func wrap(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}
