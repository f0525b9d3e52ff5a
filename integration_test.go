//go:build integration
// +build integration

package s3concurrent_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
}

// TestIntegrationSyncRoundTrip uploads a tree to LocalStack and downloads it
// back with both backends.
func TestIntegrationSyncRoundTrip(t *testing.T) {
	container, s3Client := testutil.SetupLocalStack(t)
	ctx := context.Background()

	backends := []struct {
		name string
		opts []s3types.Option
	}{
		{
			name: "aws",
			opts: []s3types.Option{
				s3concurrent.WithBackend(s3types.BackendAWS),
				s3concurrent.WithForcePathStyle(true),
			},
		},
		{
			name: "minio",
			opts: []s3types.Option{
				s3concurrent.WithBackend(s3types.BackendMinio),
				s3concurrent.WithForcePathStyle(true),
			},
		},
	}

	files := map[string][]byte{
		"a.txt":          []byte("Hello, LocalStack!"),
		"nested/b.json":  []byte(`{"ok":true}`),
		"nested/big.bin": testutil.GenerateRandomData(11 * 1024 * 1024),
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			bucket := testutil.GenerateTestBucketName("sync-" + backend.name)
			require.NoError(t, testutil.CreateBucket(ctx, s3Client, bucket))

			opts := append([]s3types.Option{
				s3concurrent.WithEndpoint(container.Endpoint()),
				s3concurrent.WithCredentials(testutil.LocalStackAccessKey, testutil.LocalStackSecretKey),
				s3concurrent.WithRegion(testutil.LocalStackRegion),
				s3concurrent.WithPartSize(5 * 1024 * 1024),
			}, backend.opts...)
			client, err := s3concurrent.New(ctx, bucket, opts...)
			require.NoError(t, err)

			runOpts := []s3types.SyncOption{
				s3concurrent.WithThreadCount(4),
				s3concurrent.WithBackoffUnit(10 * time.Millisecond),
			}

			src := t.TempDir()
			writeTree(t, src, files)

			result, err := client.Upload(ctx, src, "backup", runOpts...)
			require.NoError(t, err)
			assert.True(t, result.Completed)
			assert.Equal(t, int64(len(files)), result.Stats.Transferred)

			result, err = client.Upload(ctx, src, "backup", runOpts...)
			require.NoError(t, err)
			assert.Equal(t, int64(len(files)), result.Stats.Skipped, "multipart etags must match on the second run")

			dst := t.TempDir()
			result, err = client.Download(ctx, "backup/", dst, runOpts...)
			require.NoError(t, err)
			assert.True(t, result.Completed)
			assert.Equal(t, int64(len(files)), result.Stats.Transferred)

			for name, want := range files {
				got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
				require.NoError(t, err, name)
				assert.Equal(t, want, got, name)
			}

			result, err = client.Download(ctx, "backup/", dst, runOpts...)
			require.NoError(t, err)
			assert.Equal(t, int64(len(files)), result.Stats.Skipped)
		})
	}
}

// TestIntegrationMissingBucket checks that an unknown bucket fails the run
// before any task is created.
func TestIntegrationMissingBucket(t *testing.T) {
	container, _ := testutil.SetupLocalStack(t)
	ctx := context.Background()

	client, err := s3concurrent.New(ctx, testutil.GenerateTestBucketName("missing"),
		s3concurrent.WithEndpoint(container.Endpoint()),
		s3concurrent.WithCredentials(testutil.LocalStackAccessKey, testutil.LocalStackSecretKey),
		s3concurrent.WithRegion(testutil.LocalStackRegion),
		s3concurrent.WithForcePathStyle(true),
	)
	require.NoError(t, err)

	result, err := client.Download(ctx, "", t.TempDir())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsBucketNotFound(err), err)
}
