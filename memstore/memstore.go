// Package memstore implements objstore.Client using an in-memory bucket.
//
// A Store behaves like an S3-compatible bucket as far as lesiw.io/cosfs can
// observe: listings are paginated and rolled up by delimiter, multipart
// uploads are tracked until completed or aborted, and errors are reported
// as *objstore.ResponseError values with the store's status codes.
//
// Tests can inject failures per operation with [WithFault] and count
// requests with [Store.Calls].
package memstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"lesiw.io/cosfs/objstore"
)

// DefaultPageSize is the largest page a listing returns by default.
const DefaultPageSize = 1000

// DefaultMinPartSize is the smallest size accepted for any multipart part
// except the last.
const DefaultMinPartSize = 5 << 20

// A FaultFunc is consulted before every operation. A non-nil error is
// returned to the caller and the operation has no effect.
type FaultFunc func(op, key string) error

// An Option configures a Store.
type Option func(*Store)

// WithPageSize caps the number of entries per listing page.
func WithPageSize(n int) Option {
	return func(s *Store) { s.pageSize = n }
}

// WithMinPartSize sets the smallest size accepted for non-final parts.
func WithMinPartSize(n int64) Option {
	return func(s *Store) { s.minPartSize = n }
}

// WithFault installs f as the store's fault hook.
func WithFault(f FaultFunc) Option {
	return func(s *Store) { s.fault = f }
}

// New returns a new empty bucket.
func New(bucket string, opts ...Option) *Store {
	s := &Store{
		bucket:      bucket,
		pageSize:    DefaultPageSize,
		minPartSize: DefaultMinPartSize,
		objects:     make(map[string]*object),
		uploads:     make(map[string]*upload),
		calls:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// A Store is an in-memory bucket. It is safe for concurrent use.
type Store struct {
	sync.RWMutex
	bucket      string
	pageSize    int
	minPartSize int64
	objects     map[string]*object
	uploads     map[string]*upload
	nextUpload  int

	mu    sync.Mutex // guards fault and calls
	fault FaultFunc
	calls map[string]int
}

// object is one stored object.
type object struct {
	data    []byte
	modTime time.Time
	etag    string
}

func (o *object) info(k string) objstore.ObjectInfo {
	return objstore.ObjectInfo{
		Key:          k,
		Size:         int64(len(o.data)),
		LastModified: o.modTime,
		ETag:         o.etag,
	}
}

var (
	_ objstore.BatchDeleter = (*Store)(nil)
	_ objstore.UploadLister = (*Store)(nil)
)

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// SetFault replaces the store's fault hook. A nil f removes it.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// Calls returns the number of requests made for op, including requests
// that failed.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ResetCalls zeroes every request counter.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.calls)
}

// request counts a request for op and consults the fault hook.
func (s *Store) request(ctx context.Context, op, k string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.calls[op]++
	fault := s.fault
	s.mu.Unlock()
	if fault != nil {
		return fault(op, k)
	}
	return nil
}

// readBody reads exactly size bytes from r.
func readBody(r io.Reader, size int64) ([]byte, error) {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	if size >= 0 && int64(buf.Len()) != size {
		return nil, &objstore.ResponseError{
			StatusCode: http.StatusBadRequest,
			Code:       objstore.CodeIncompleteBody,
			Message: fmt.Sprintf(
				"read %d bytes, want %d", buf.Len(), size,
			),
		}
	}
	return buf.Bytes(), nil
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
