package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent"
	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

func TestParseArgs(t *testing.T) {
	t.Run("download defaults", func(t *testing.T) {
		opts, err := parseArgs([]string{"download", "AKID", "SECRET", "my-bucket"}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, s3types.DirectionDownload, opts.direction)
		assert.Equal(t, "AKID", opts.accessKey)
		assert.Equal(t, "SECRET", opts.secretKey)
		assert.Equal(t, "my-bucket", opts.bucket)
		assert.Equal(t, ".", opts.folder)
		assert.Empty(t, opts.prefix)
		assert.Equal(t, 10, opts.threadCount)
		assert.Equal(t, 10, opts.maxRetry)
		assert.Equal(t, s3concurrent.DefaultPartSize, opts.partSize)
		assert.Equal(t, 10*time.Second, opts.reportInterval)
		assert.Equal(t, "aws", opts.backend)
	})

	t.Run("interleaved flags and positionals", func(t *testing.T) {
		opts, err := parseArgs([]string{
			"upload", "--thread_count", "32", "AKID",
			"--include", "*.txt", "SECRET", "--include=*.md",
			"my-bucket", "--local_folder", "/data", "--prefix", "backup/",
			"--exclude", "tmp/", "--backend", "minio", "--path_style",
		}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, s3types.DirectionUpload, opts.direction)
		assert.Equal(t, "my-bucket", opts.bucket)
		assert.Equal(t, "/data", opts.folder)
		assert.Equal(t, "backup/", opts.prefix)
		assert.Equal(t, 32, opts.threadCount)
		assert.Equal(t, stringList{"*.txt", "*.md"}, opts.include)
		assert.Equal(t, stringList{"tmp/"}, opts.exclude)
		assert.Equal(t, "minio", opts.backend)
		assert.True(t, opts.pathStyle)
	})

	t.Run("dash selects the credential chain", func(t *testing.T) {
		opts, err := parseArgs([]string{"download", "-", "-", "my-bucket"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Empty(t, opts.accessKey)
		assert.Empty(t, opts.secretKey)
		assert.Len(t, opts.clientOptions(slog.Default()), 4)
	})

	errorCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "no command", args: nil, want: "missing command"},
		{name: "unknown command", args: []string{"sync", "a", "b", "c"}, want: "unknown command"},
		{name: "missing bucket", args: []string{"download", "a", "b"}, want: "expected ACCESS_KEY"},
		{name: "half credentials", args: []string{"download", "a", "-", "bucket"}, want: "both"},
		{name: "unknown backend", args: []string{"download", "a", "b", "bucket", "--backend", "gcs"}, want: "unknown backend"},
		{name: "flag of the other command", args: []string{"download", "a", "b", "bucket", "--local_folder", "x"}, want: "local_folder"},
		{name: "bad number", args: []string{"upload", "a", "b", "bucket", "--thread_count", "many"}, want: "thread_count"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "key", "a")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestRunExitCodes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "usage error", args: []string{"sync"}, want: exitUsage},
		{name: "help", args: []string{"download", "-h"}, want: exitOK},
		{name: "bad log format", args: []string{"download", "-", "-", "bucket", "--log_format", "xml"}, want: exitUsage},
		{name: "invalid bucket name", args: []string{"download", "-", "-", "Not_A_Bucket"}, want: exitUsage},
		{
			name: "minio without endpoint",
			args: []string{"download", "a", "b", "bucket", "--backend", "minio"},
			want: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, run(ctx, tt.args, &stderr), stderr.String())
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUsage, exitCode(s3errors.NewValidationError("bad")))
	assert.Equal(t, exitIncomplete, exitCode(s3errors.NewError("headBucket", s3errors.ErrBucketNotFound)))
	assert.Equal(t, exitIncomplete, exitCode(errors.New("boom")))
	assert.True(t, strings.HasPrefix(usage, "usage:"))
}
