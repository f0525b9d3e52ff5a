package awss3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

// Get streams the body of key into w.
func (s *Store) Get(ctx context.Context, key string, w io.Writer) (int64, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, s3errors.NewObjectError("download", s.bucket, key, translateError(err, false))
	}
	defer output.Body.Close()

	n, err := io.Copy(w, output.Body)
	if err != nil {
		return n, s3errors.NewObjectError("download", s.bucket, key, fmt.Errorf("read body: %w", err))
	}
	return n, nil
}
