package awss3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

// Exists reports whether key exists in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.head(ctx, key)
	if err != nil {
		if s3errors.IsObjectNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FetchETag returns the ETag of key exactly as reported by S3.
func (s *Store) FetchETag(ctx context.Context, key string) (string, error) {
	output, err := s.head(ctx, key)
	if err != nil {
		return "", err
	}
	return aws.ToString(output.ETag), nil
}

func (s *Store) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	output, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3errors.NewObjectError("headObject", s.bucket, key, translateError(err, false))
	}
	return output, nil
}

// CheckBucket verifies the bucket exists and the credentials can reach it.
func (s *Store) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return s3errors.NewError("checkBucket", translateError(err, true)).WithBucket(s.bucket)
	}
	return nil
}
