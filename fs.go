package cosfs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// Default sizes.
const (
	// DefaultBlockSize is the smallest range a Reader fetches at once.
	DefaultBlockSize = 5 << 20

	// DefaultPartSize is the size of each multipart upload part, and the
	// largest object a Writer uploads with a single PUT.
	DefaultPartSize = 5 << 20

	// DefaultMaxParts is the largest number of parts in an upload.
	DefaultMaxParts = 10000

	// DefaultPageSize is the number of keys requested per listing page.
	DefaultPageSize = 1000
)

// An FS is a filesystem view of one bucket.
//
// An FS is safe for concurrent use. The Readers and Writers it returns
// are not.
type FS struct {
	client objstore.Client
	keys   *key.Mapper
	logger *slog.Logger
	cache  *listingCache

	root      string
	blockSize int64
	partSize  int64
	maxParts  int
	pageSize  int
	cacheSize int
	cacheTTL  time.Duration
}

// An Option configures an FS.
type Option func(*FS)

// WithRoot places every path under the key prefix root.
func WithRoot(root string) Option {
	return func(f *FS) { f.root = root }
}

// WithBlockSize sets the smallest range a Reader fetches at once.
// It can be overridden per call with [WithReadBlockSize].
func WithBlockSize(n int64) Option {
	return func(f *FS) { f.blockSize = n }
}

// WithPartSize sets the multipart upload part size, which is also the
// largest object uploaded with a single PUT.
func WithPartSize(n int64) Option {
	return func(f *FS) { f.partSize = n }
}

// WithMaxParts sets the largest number of parts in an upload.
func WithMaxParts(n int) Option {
	return func(f *FS) { f.maxParts = n }
}

// WithPageSize sets the number of keys requested per listing page.
func WithPageSize(n int) Option {
	return func(f *FS) { f.pageSize = n }
}

// WithListingCache caches up to size directory listings for ttl.
//
// Listings are invalidated by writes made through the FS, but not by
// writes made by other clients of the bucket.
func WithListingCache(size int, ttl time.Duration) Option {
	return func(f *FS) {
		f.cacheSize = size
		f.cacheTTL = ttl
	}
}

// WithLogger sets the logger for debug and warning messages.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FS) { f.logger = logger }
}

// New returns a filesystem view of the client's bucket.
func New(client objstore.Client, opts ...Option) (*FS, error) {
	f := &FS{
		client:    client,
		logger:    slog.New(slog.DiscardHandler),
		blockSize: DefaultBlockSize,
		partSize:  DefaultPartSize,
		maxParts:  DefaultMaxParts,
		pageSize:  DefaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}

	switch {
	case f.blockSize <= 0:
		return nil, fmt.Errorf("%w: block size %d", ErrInvalid, f.blockSize)
	case f.partSize <= 0:
		return nil, fmt.Errorf("%w: part size %d", ErrInvalid, f.partSize)
	case f.maxParts <= 0 || f.maxParts > DefaultMaxParts:
		return nil, fmt.Errorf("%w: max parts %d", ErrInvalid, f.maxParts)
	case f.pageSize <= 0:
		return nil, fmt.Errorf("%w: page size %d", ErrInvalid, f.pageSize)
	}

	keys, err := key.NewMapper(client.Bucket(), f.root)
	if err != nil {
		return nil, fmt.Errorf("root %q: %w", f.root, err)
	}
	f.keys = keys
	if f.cacheSize > 0 {
		f.cache = newListingCache(f.cacheSize, f.cacheTTL)
	}
	return f, nil
}

// Bucket returns the name of the bucket.
func (f *FS) Bucket() string { return f.keys.Bucket() }

// Client returns the object store client.
func (f *FS) Client() objstore.Client { return f.client }

// clean resolves name against the context's working directory and returns
// its clean path.
func (f *FS) clean(ctx context.Context, name string) (string, error) {
	if strings.HasPrefix(name, key.Scheme) {
		return f.keys.Clean(name)
	}
	if dir := WorkDir(ctx); dir != "" && !strings.HasPrefix(name, "/") {
		if name == "" {
			name = dir
		} else {
			name = strings.TrimSuffix(dir, key.Delimiter) +
				key.Delimiter + name
		}
	}
	return f.keys.Clean(name)
}

// lookup returns the clean path and storage key for name.
func (f *FS) lookup(
	ctx context.Context, name string,
) (p, k string, err error) {
	if p, err = f.clean(ctx, name); err != nil {
		return "", "", err
	}
	if k, err = f.keys.Key(p); err != nil {
		return "", "", err
	}
	return p, k, nil
}

// prefix returns the listing prefix for the clean path p.
func (f *FS) prefix(p string) (string, error) {
	return f.keys.Prefix(p)
}

// pathOf returns the clean path for the storage key k.
func (f *FS) pathOf(k string) (string, error) {
	return f.keys.Path(k)
}
