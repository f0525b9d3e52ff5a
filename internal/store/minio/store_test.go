package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

type fakeAPI struct {
	objects   []minio.ObjectInfo
	statErr   error
	getErr    error
	bucketOK  bool
	bucketErr error

	putKey  string
	putBody []byte
	putOpts minio.PutObjectOptions
}

func (f *fakeAPI) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for _, obj := range f.objects {
		if strings.HasPrefix(obj.Key, opts.Prefix) || obj.Err != nil {
			ch <- obj
		}
	}
	close(ch)
	return ch
}

func (f *fakeAPI) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	return minio.ObjectInfo{Key: key, ETag: "abc-2"}, nil
}

func (f *fakeAPI) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, f.getErr
}

func (f *fakeAPI) PutObject(
	_ context.Context,
	_, key string,
	reader io.Reader,
	_ int64,
	opts minio.PutObjectOptions,
) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putKey, f.putBody, f.putOpts = key, data, opts
	return minio.UploadInfo{Key: key}, nil
}

func (f *fakeAPI) BucketExists(context.Context, string) (bool, error) {
	return f.bucketOK, f.bucketErr
}

func notFound(code string) error {
	return minio.ErrorResponse{Code: code, StatusCode: http.StatusNotFound}
}

func TestStoreList(t *testing.T) {
	api := &fakeAPI{objects: []minio.ObjectInfo{
		{Key: "root/a/b", ETag: "e1", Size: 1},
		{Key: "root/b/c", ETag: "e2", Size: 2},
		{Err: notFound("NoSuchBucket")},
		{Key: "root/never", ETag: "e3"},
	}}

	var keys []string
	var lastErr error
	for r := range New(api, "bucket", 0).List(context.Background(), "root") {
		if r.Err != nil {
			lastErr = r.Err
			continue
		}
		keys = append(keys, r.Object.Key)
	}

	assert.Equal(t, []string{"root/a/b", "root/b/c"}, keys)
	require.Error(t, lastErr)
	assert.True(t, s3errors.IsBucketNotFound(lastErr))
}

func TestStoreExists(t *testing.T) {
	s := New(&fakeAPI{}, "bucket", 0)
	ok, err := s.Exists(context.Background(), "key")
	require.NoError(t, err)
	assert.True(t, ok)

	s = New(&fakeAPI{statErr: notFound("NoSuchKey")}, "bucket", 0)
	ok, err = s.Exists(context.Background(), "key")
	require.NoError(t, err)
	assert.False(t, ok)

	s = New(&fakeAPI{statErr: minio.ErrorResponse{Code: "AccessDenied"}}, "bucket", 0)
	_, err = s.Exists(context.Background(), "key")
	require.Error(t, err)
	assert.True(t, s3errors.IsAccessDenied(err))
}

func TestStoreFetchETag(t *testing.T) {
	etag, err := New(&fakeAPI{}, "bucket", 0).FetchETag(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", etag)
}

func TestStoreGetError(t *testing.T) {
	s := New(&fakeAPI{getErr: notFound("NoSuchKey")}, "bucket", 0)
	_, err := s.Get(context.Background(), "key", io.Discard)
	require.Error(t, err)
	assert.True(t, s3errors.IsObjectNotFound(err))
}

func TestStorePut(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, "bucket", 16*1024*1024)

	require.NoError(t, s.Put(context.Background(), "a/b", bytes.NewReader([]byte("mocked file")), 11))
	assert.Equal(t, "a/b", api.putKey)
	assert.Equal(t, []byte("mocked file"), api.putBody)
	assert.Equal(t, uint64(16*1024*1024), api.putOpts.PartSize)
}

func TestStoreCheckBucket(t *testing.T) {
	require.NoError(t, New(&fakeAPI{bucketOK: true}, "bucket", 0).CheckBucket(context.Background()))

	err := New(&fakeAPI{}, "bucket", 0).CheckBucket(context.Background())
	assert.True(t, s3errors.IsBucketNotFound(err))

	err = New(&fakeAPI{bucketErr: errors.New("dial tcp: refused")}, "bucket", 0).CheckBucket(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://localhost:9000", AccessKeyID: "a", SecretAccessKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", client.EndpointURL().Host)
	assert.Equal(t, "http", client.EndpointURL().Scheme)

	_, err = NewClient(Config{})
	assert.True(t, s3errors.IsInvalidInput(err))
}
