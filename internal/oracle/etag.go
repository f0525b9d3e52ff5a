package oracle

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultPartSize is the multipart chunk size assumed when computing
// multipart ETags. It matches the uploader's default part size.
const DefaultPartSize int64 = 8 * 1024 * 1024

// ETag is a parsed entity tag.
type ETag struct {
	// Hex is the lower-case hex digest.
	Hex string

	// Parts is the part count of a multipart ETag, zero for a plain one.
	Parts int
}

// Multipart reports whether the tag was produced by a multipart upload.
func (e ETag) Multipart() bool {
	return e.Parts > 0
}

// ParseETag parses a plain ("<hex md5>") or multipart ("<hex md5>-<parts>")
// entity tag. Surrounding quotes are stripped and hex is lower-cased.
func ParseETag(raw string) (ETag, error) {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"`))
	if s == "" {
		return ETag{}, errors.New("empty etag")
	}

	digest, count, multipart := strings.Cut(s, "-")
	if !isMD5Hex(digest) {
		return ETag{}, fmt.Errorf("malformed etag %q", raw)
	}
	if !multipart {
		return ETag{Hex: digest}, nil
	}

	parts, err := strconv.Atoi(count)
	if err != nil || parts < 1 {
		return ETag{}, fmt.Errorf("malformed etag part count %q", raw)
	}
	return ETag{Hex: digest, Parts: parts}, nil
}

func isMD5Hex(s string) bool {
	if len(s) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// PlainETag returns the hex MD5 of everything read from r.
func PlainETag(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MultipartETag returns the multipart ETag of everything read from r, split in
// partSize chunks: the hex MD5 of the concatenated per-chunk MD5 digests,
// followed by "-" and the chunk count.
func MultipartETag(r io.Reader, partSize int64) (string, error) {
	if partSize <= 0 {
		return "", fmt.Errorf("invalid part size %d", partSize)
	}

	var (
		digests []byte
		parts   int
	)
	for {
		h := md5.New()
		n, err := io.CopyN(h, r, partSize)
		if n > 0 {
			digests = h.Sum(digests)
			parts++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash part %d: %w", parts+1, err)
		}
	}

	// An empty body is still one (empty) part.
	if parts == 0 {
		empty := md5.Sum(nil)
		digests = empty[:]
		parts = 1
	}

	sum := md5.Sum(digests)
	return hex.EncodeToString(sum[:]) + "-" + strconv.Itoa(parts), nil
}

// Match reports whether the content read from r has the given remote ETag.
// Multipart tags are recomputed with partSize; a differing part count is a
// mismatch. A malformed or empty ETag never matches.
func Match(etag string, r io.Reader, partSize int64) (bool, error) {
	want, err := ParseETag(etag)
	if err != nil {
		return false, nil
	}

	if !want.Multipart() {
		got, err := PlainETag(r)
		if err != nil {
			return false, err
		}
		return got == want.Hex, nil
	}

	got, err := MultipartETag(r, partSize)
	if err != nil {
		return false, err
	}
	return got == want.Hex+"-"+strconv.Itoa(want.Parts), nil
}
