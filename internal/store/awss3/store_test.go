package awss3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/testutil"
)

func collect(ch <-chan store.ListResult) []store.ListResult {
	var results []store.ListResult
	for r := range ch {
		results = append(results, r)
	}
	return results
}

func TestStoreList(t *testing.T) {
	now := time.Now()

	t.Run("follows continuation tokens", func(t *testing.T) {
		var calls int
		mock := &testutil.MockS3Client{
			ListObjectsV2Func: func(
				_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options),
			) (*s3.ListObjectsV2Output, error) {
				calls++
				assert.Equal(t, "bucket", aws.ToString(in.Bucket))
				assert.Equal(t, "root", aws.ToString(in.Prefix))
				if in.ContinuationToken == nil {
					return testutil.CreateListObjectsV2Output([]types.Object{
						testutil.CreateTestObject("root/a", []byte("a"), now),
						testutil.CreateTestObject("root/b", []byte("bb"), now),
					}, "root", "page-2"), nil
				}
				assert.Equal(t, "page-2", aws.ToString(in.ContinuationToken))
				return testutil.CreateListObjectsV2Output([]types.Object{
					testutil.CreateTestObject("root/c", []byte("ccc"), now),
				}, "root", ""), nil
			},
		}

		results := collect(New(mock, "bucket").List(context.Background(), "root"))
		require.Len(t, results, 3)
		assert.Equal(t, 2, calls)

		for i, key := range []string{"root/a", "root/b", "root/c"} {
			require.NoError(t, results[i].Err)
			assert.Equal(t, key, results[i].Object.Key)
			assert.Equal(t, int64(i+1), results[i].Object.Size)
			assert.NotEmpty(t, results[i].Object.ETag)
		}
	})

	t.Run("page error ends the listing", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			ListObjectsV2Func: func(
				context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options),
			) (*s3.ListObjectsV2Output, error) {
				return nil, &types.NoSuchBucket{}
			},
		}

		results := collect(New(mock, "missing").List(context.Background(), ""))
		require.Len(t, results, 1)
		assert.True(t, s3errors.IsBucketNotFound(results[0].Err))
	})
}

func TestStoreExists(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "present", want: true},
		{name: "typed not found", err: &types.NotFound{}},
		{name: "no such key code", err: &smithy.GenericAPIError{Code: "NoSuchKey"}},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testutil.MockS3Client{
				HeadObjectFunc: func(
					context.Context, *s3.HeadObjectInput, ...func(*s3.Options),
				) (*s3.HeadObjectOutput, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &s3.HeadObjectOutput{ETag: aws.String(`"abc"`)}, nil
				},
			}

			got, err := New(mock, "bucket").Exists(context.Background(), "key")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, s3errors.IsAccessDenied(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreFetchETag(t *testing.T) {
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(
			_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options),
		) (*s3.HeadObjectOutput, error) {
			assert.Equal(t, "some/key", aws.ToString(in.Key))
			return &s3.HeadObjectOutput{ETag: aws.String(`"de3a2ccff42d63dc60c6955634d122da"`)}, nil
		},
	}

	etag, err := New(mock, "bucket").FetchETag(context.Background(), "some/key")
	require.NoError(t, err)
	assert.Equal(t, `"de3a2ccff42d63dc60c6955634d122da"`, etag)
}

func TestStoreCheckBucket(t *testing.T) {
	mock := &testutil.MockS3Client{
		HeadBucketFunc: func(
			context.Context, *s3.HeadBucketInput, ...func(*s3.Options),
		) (*s3.HeadBucketOutput, error) {
			return nil, &types.NotFound{}
		},
	}

	err := New(mock, "missing").CheckBucket(context.Background())
	require.Error(t, err)
	assert.True(t, s3errors.IsBucketNotFound(err))
	assert.Equal(t, s3errors.CodeNotFound, s3errors.CodeOf(err))

	require.NoError(t, New(&testutil.MockS3Client{}, "bucket").CheckBucket(context.Background()))
}

func TestStoreGet(t *testing.T) {
	t.Run("streams the body", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			GetObjectFunc: func(
				context.Context, *s3.GetObjectInput, ...func(*s3.Options),
			) (*s3.GetObjectOutput, error) {
				return testutil.CreateGetObjectOutput([]byte("mocked file")), nil
			},
		}

		var buf bytes.Buffer
		n, err := New(mock, "bucket").Get(context.Background(), "key", &buf)
		require.NoError(t, err)
		assert.Equal(t, int64(11), n)
		assert.Equal(t, "mocked file", buf.String())
	})

	t.Run("missing object", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			GetObjectFunc: func(
				context.Context, *s3.GetObjectInput, ...func(*s3.Options),
			) (*s3.GetObjectOutput, error) {
				return nil, &types.NoSuchKey{}
			},
		}

		_, err := New(mock, "bucket").Get(context.Background(), "key", io.Discard)
		require.Error(t, err)
		assert.True(t, s3errors.IsObjectNotFound(err))
	})
}

func TestStorePut(t *testing.T) {
	t.Run("small body uses a single put", func(t *testing.T) {
		var (
			body        []byte
			contentType string
		)
		mock := &testutil.MockS3Client{
			PutObjectFunc: func(
				_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options),
			) (*s3.PutObjectOutput, error) {
				data, err := io.ReadAll(in.Body)
				require.NoError(t, err)
				body = data
				contentType = aws.ToString(in.ContentType)
				return &s3.PutObjectOutput{}, nil
			},
		}

		data := []byte(`{"hello":"world"}`)
		err := New(mock, "bucket").Put(context.Background(), "dir/file.json", bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, data, body)
		assert.Equal(t, "application/json", contentType)
	})

	t.Run("large body uses multipart parts of the configured size", func(t *testing.T) {
		const partSize = 5 * 1024 * 1024
		var parts atomic.Int32
		var completed atomic.Bool

		mock := &testutil.MockS3Client{
			CreateMultipartUploadFunc: func(
				context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options),
			) (*s3.CreateMultipartUploadOutput, error) {
				return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
			},
			UploadPartFunc: func(
				_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options),
			) (*s3.UploadPartOutput, error) {
				parts.Add(1)
				assert.Equal(t, "upload-1", aws.ToString(in.UploadId))
				return &s3.UploadPartOutput{ETag: aws.String(`"part"`)}, nil
			},
			CompleteMultipartUploadFunc: func(
				context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options),
			) (*s3.CompleteMultipartUploadOutput, error) {
				completed.Store(true)
				return &s3.CompleteMultipartUploadOutput{}, nil
			},
		}

		data := testutil.GenerateRandomData(2*partSize + 1024)
		s := New(mock, "bucket", WithPartSize(partSize))
		assert.Equal(t, int64(partSize), s.PartSize())

		err := s.Put(context.Background(), "big.bin", bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, int32(3), parts.Load())
		assert.True(t, completed.Load())
	})

	t.Run("put error is wrapped", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			PutObjectFunc: func(
				context.Context, *s3.PutObjectInput, ...func(*s3.Options),
			) (*s3.PutObjectOutput, error) {
				return nil, errors.New("connection reset")
			},
		}

		err := New(mock, "bucket").Put(context.Background(), "key", bytes.NewReader([]byte("x")), 1)
		require.Error(t, err)
		var opErr *s3errors.Error
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, "upload", opErr.Op)
		assert.Equal(t, "key", opErr.Key)
	})
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil, false))
	assert.True(t, s3errors.IsBucketNotFound(translateError(&types.NotFound{}, true)))
	assert.True(t, s3errors.IsObjectNotFound(translateError(&types.NotFound{}, false)))
	assert.True(t, s3errors.IsAccessDenied(translateError(&smithy.GenericAPIError{Code: "Forbidden"}, false)))
	assert.True(t, s3errors.IsInvalidInput(translateError(&smithy.GenericAPIError{Code: "InvalidBucketName"}, true)))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain, false))
}
