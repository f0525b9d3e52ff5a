package awss3

import (
	"bufio"
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
)

// DefaultContentType is used when the content type cannot be determined.
const DefaultContentType = "application/octet-stream"

// sniffLen is the number of leading bytes inspected for content detection.
const sniffLen = 512

// Put uploads size bytes from r under key. Bodies larger than the part size
// are sent as a multipart upload.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	body := bufio.NewReaderSize(r, sniffLen)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(detectContentType(key, body)),
	}
	if size < s.partSize {
		input.ContentLength = aws.Int64(size)
	}

	_, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return s3errors.NewObjectError("upload", s.bucket, key, translateError(err, false))
	}
	return nil
}

// detectContentType sniffs the head of the body without consuming it and
// falls back to the key's extension.
func detectContentType(key string, body *bufio.Reader) string {
	head, _ := body.Peek(sniffLen)
	if len(head) > 0 {
		if mt := mimetype.Detect(head); mt != nil && !mt.Is(DefaultContentType) {
			return mt.String()
		}
	}

	ext := strings.ToLower(path.Ext(key))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
