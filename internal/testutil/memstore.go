package testutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// MemoryStore is an in-memory ObjectStore for tests.
// Objects written with Put get an S3-style ETag: a quoted MD5 for bodies up to
// PartSize, a multipart ETag above it.
type MemoryStore struct {
	BucketName string
	PartSize   int64

	// ListErr, when set, is sent after the listed objects.
	ListErr error
	// CheckErr is returned by CheckBucket.
	CheckErr error
	// HeadErr is returned by Exists and FetchETag.
	HeadErr error

	mu       sync.Mutex
	objects  map[string]memObject
	failures map[string]int
	gets     int
	heads    int
	puts     int
}

type memObject struct {
	data     []byte
	etag     string
	modified time.Time
}

// NewMemoryStore creates an empty store bound to bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		BucketName: bucket,
		PartSize:   8 * 1024 * 1024,
		objects:    make(map[string]memObject),
		failures:   make(map[string]int),
	}
}

// Bucket returns the bucket name.
func (m *MemoryStore) Bucket() string {
	return m.BucketName
}

// SetObject stores data under key with the ETag S3 would compute.
func (m *MemoryStore) SetObject(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{
		data:     bytes.Clone(data),
		etag:     ComputeETag(data, m.PartSize),
		modified: time.Now(),
	}
}

// SetETag overrides the stored ETag of key.
func (m *MemoryStore) SetETag(key, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj := m.objects[key]
	obj.etag = etag
	m.objects[key] = obj
}

// Object returns the stored body of key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj.data, ok
}

// Keys returns every stored key in lexical order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FailTransfers makes the next n Get or Put calls on key fail.
// A negative n fails every call.
func (m *MemoryStore) FailTransfers(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = n
}

// Gets returns the number of Get calls.
func (m *MemoryStore) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// Heads returns the number of Exists and FetchETag calls.
func (m *MemoryStore) Heads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heads
}

// Puts returns the number of Put calls.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// List streams every object under prefix in lexical order.
func (m *MemoryStore) List(ctx context.Context, prefix string) <-chan store.ListResult {
	m.mu.Lock()
	var results []store.ListResult
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		results = append(results, store.ListResult{Object: s3types.Object{
			Key:          key,
			ETag:         obj.etag,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		}})
	}
	m.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Object.Key < results[j].Object.Key
	})
	if m.ListErr != nil {
		results = append(results, store.ListResult{Err: m.ListErr})
	}

	ch := make(chan store.ListResult)
	go func() {
		defer close(ch)
		for _, r := range results {
			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Exists reports whether key is stored.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heads++
	if m.HeadErr != nil {
		return false, m.HeadErr
	}
	_, ok := m.objects[key]
	return ok, nil
}

// FetchETag returns the quoted ETag of key.
func (m *MemoryStore) FetchETag(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heads++
	if m.HeadErr != nil {
		return "", m.HeadErr
	}
	obj, ok := m.objects[key]
	if !ok {
		return "", s3errors.NewObjectError("headObject", m.BucketName, key, s3errors.ErrObjectNotFound)
	}
	return obj.etag, nil
}

// Get writes the body of key into w.
func (m *MemoryStore) Get(_ context.Context, key string, w io.Writer) (int64, error) {
	m.mu.Lock()
	m.gets++
	if err := m.injectedFailure("download", key); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	obj, ok := m.objects[key]
	m.mu.Unlock()

	if !ok {
		return 0, s3errors.NewObjectError("download", m.BucketName, key, s3errors.ErrObjectNotFound)
	}
	n, err := w.Write(obj.data)
	return int64(n), err
}

// Put stores the body read from r under key.
func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, size int64) error {
	m.mu.Lock()
	m.puts++
	err := m.injectedFailure("upload", key)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return s3errors.NewObjectError("upload", m.BucketName, key, err)
	}
	if int64(len(data)) != size {
		return s3errors.NewObjectError("upload", m.BucketName, key,
			fmt.Errorf("short body: got %d bytes, want %d", len(data), size))
	}
	m.SetObject(key, data)
	return nil
}

// CheckBucket returns CheckErr.
func (m *MemoryStore) CheckBucket(context.Context) error {
	return m.CheckErr
}

// injectedFailure must be called with mu held.
func (m *MemoryStore) injectedFailure(op, key string) error {
	n, ok := m.failures[key]
	if !ok || n == 0 {
		return nil
	}
	if n > 0 {
		m.failures[key] = n - 1
	}
	return s3errors.NewObjectError(op, m.BucketName, key, fmt.Errorf("%w: injected failure", s3errors.ErrConnection))
}

// ComputeETag returns the quoted ETag S3 reports for data uploaded with the
// given multipart part size.
func ComputeETag(data []byte, partSize int64) string {
	if partSize <= 0 || int64(len(data)) <= partSize {
		sum := md5.Sum(data)
		return `"` + hex.EncodeToString(sum[:]) + `"`
	}

	var digests []byte
	parts := 0
	for off := int64(0); off < int64(len(data)); off += partSize {
		end := min(off+partSize, int64(len(data)))
		sum := md5.Sum(data[off:end])
		digests = append(digests, sum[:]...)
		parts++
	}
	sum := md5.Sum(digests)
	return fmt.Sprintf(`"%s-%d"`, hex.EncodeToString(sum[:]), parts)
}

var _ store.ObjectStore = (*MemoryStore)(nil)
