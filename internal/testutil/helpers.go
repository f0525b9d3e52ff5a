package testutil

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GenerateRandomData generates random bytes of the specified size.
// This is useful for creating test data for uploads.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateTestBucketName generates a valid, unique test bucket name.
func GenerateTestBucketName(prefix string) string {
	name := strings.ToLower(fmt.Sprintf("%s-%s", prefix, uuid.NewString()))
	name = strings.ReplaceAll(name, "_", "-")
	if len(name) > 63 {
		name = strings.TrimRight(name[:63], "-")
	}
	return name
}

// CalculateETag calculates the quoted single-part ETag for the given data.
func CalculateETag(data []byte) string {
	h := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, h)
}

// CreateTestObject creates a listed S3 object whose ETag matches data.
func CreateTestObject(key string, data []byte, lastModified time.Time) types.Object {
	return types.Object{
		Key:          aws.String(key),
		Size:         aws.Int64(int64(len(data))),
		LastModified: aws.Time(lastModified),
		ETag:         aws.String(CalculateETag(data)),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// CreateListObjectsV2Output creates a test ListObjectsV2Output page.
// A truncated page carries the given continuation token.
func CreateListObjectsV2Output(objects []types.Object, prefix, nextToken string) *s3.ListObjectsV2Output {
	output := &s3.ListObjectsV2Output{
		Contents:    objects,
		KeyCount:    aws.Int32(int32(len(objects))),
		MaxKeys:     aws.Int32(1000),
		Name:        aws.String("test-bucket"),
		Prefix:      aws.String(prefix),
		IsTruncated: aws.Bool(nextToken != ""),
	}
	if nextToken != "" {
		output.NextContinuationToken = aws.String(nextToken)
	}
	return output
}

// CreateGetObjectOutput creates a test GetObjectOutput structure.
func CreateGetObjectOutput(data []byte) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(CalculateETag(data)),
		LastModified:  aws.Time(time.Now()),
	}
}

// WriteFile creates path and its parents on filesystem with data.
func WriteFile(t *testing.T, filesystem fs.Filesystem, path string, data []byte) {
	t.Helper()
	require.NoError(t, filesystem.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, filesystem.WriteFile(path, data, 0o644))
}

// ReadFile returns the content of path on filesystem.
func ReadFile(t *testing.T, filesystem fs.Filesystem, path string) []byte {
	t.Helper()
	data, err := filesystem.ReadFile(path)
	require.NoError(t, err)
	return data
}
