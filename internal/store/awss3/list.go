package awss3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// listPageSize is the maximum page size allowed by S3.
const listPageSize = 1000

// List streams every object under prefix, one page at a time.
// The listing stops at the first page error, which is sent as the last result.
func (s *Store) List(ctx context.Context, prefix string) <-chan store.ListResult {
	results := make(chan store.ListResult, listPageSize)

	go func() {
		defer close(results)

		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(s.bucket),
			MaxKeys: aws.Int32(listPageSize),
		}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		paginator := s3.NewListObjectsV2Paginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				err = s3errors.NewError("list", translateError(err, true)).WithBucket(s.bucket).WithKey(prefix)
				select {
				case results <- store.ListResult{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			for _, obj := range page.Contents {
				result := store.ListResult{
					Object: s3types.Object{
						Key:          aws.ToString(obj.Key),
						ETag:         aws.ToString(obj.ETag),
						Size:         aws.ToInt64(obj.Size),
						LastModified: aws.ToTime(obj.LastModified),
					},
				}
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return results
}
