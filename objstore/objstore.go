// Package objstore defines the object store client consumed by
// lesiw.io/cosfs.
//
// The core [Client] interface mirrors the primitive operations of an
// S3-compatible object store such as Tencent Cloud Object Storage: whole
// object PUT, ranged GET, HEAD, paginated prefix listing, DELETE, COPY and
// the multipart upload protocol. Request signing, credentials and HTTP
// retries are the implementation's concern.
//
// Additional capabilities are optional and discovered through type
// assertions:
//
//   - [BatchDeleter] - Delete many keys in one request
//   - [UploadLister] - List in-progress multipart uploads
//
// An implementation may satisfy an optional interface and still return
// [errors.ErrUnsupported] from it, for example when it wraps another
// client. Callers treat that error as if the capability were absent.
package objstore

import (
	"context"
	"io"
	"time"
)

// MaxDeleteKeys is the largest number of keys a single
// [BatchDeleter.DeleteObjects] call accepts.
const MaxDeleteKeys = 1000

// A Client performs authenticated operations against one bucket.
//
// A Client must be safe for concurrent use.
type Client interface {
	// Bucket returns the name of the bucket the client operates on.
	Bucket() string

	// PutObject uploads size bytes from r as the object key, replacing
	// any existing object. It returns the ETag of the new object.
	PutObject(
		ctx context.Context, key string, r io.Reader, size int64,
	) (string, error)

	// GetObject returns a reader over length bytes of the object key,
	// starting at offset. A negative length reads to the end of the
	// object.
	//
	// The returned reader must be closed when done.
	GetObject(
		ctx context.Context, key string, offset, length int64,
	) (io.ReadCloser, error)

	// HeadObject returns the metadata of the object key.
	HeadObject(ctx context.Context, key string) (ObjectInfo, error)

	// ListObjects returns one page of keys matching in.
	ListObjects(ctx context.Context, in ListInput) (ListOutput, error)

	// DeleteObject removes the object key. Deleting a key that does not
	// exist is not an error.
	DeleteObject(ctx context.Context, key string) error

	// CopyObject copies the object src to dst within the bucket.
	CopyObject(ctx context.Context, src, dst string) error

	// InitiateMultipart starts a multipart upload to key and returns its
	// upload ID.
	InitiateMultipart(ctx context.Context, key string) (string, error)

	// UploadPart uploads size bytes from r as part number of the upload
	// and returns the part's ETag. Part numbers start at 1.
	UploadPart(
		ctx context.Context, key, uploadID string, number int,
		r io.Reader, size int64,
	) (string, error)

	// CompleteMultipart assembles parts, in order, into the object key.
	CompleteMultipart(
		ctx context.Context, key, uploadID string, parts []Part,
	) error

	// AbortMultipart discards the upload and any parts uploaded to it.
	AbortMultipart(ctx context.Context, key, uploadID string) error
}

// A BatchDeleter is a Client that can remove many keys in one request.
type BatchDeleter interface {
	Client

	// DeleteObjects removes up to MaxDeleteKeys keys. Keys that do not
	// exist are ignored.
	DeleteObjects(ctx context.Context, keys []string) error
}

// An UploadLister is a Client that can list in-progress multipart
// uploads.
type UploadLister interface {
	Client

	// ListMultipartUploads returns the uploads whose key starts with
	// prefix that have been neither completed nor aborted.
	ListMultipartUploads(
		ctx context.Context, prefix string,
	) ([]Upload, error)
}

// ObjectInfo is the metadata of one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ListInput selects one page of a listing.
type ListInput struct {
	// Prefix restricts the listing to keys starting with it.
	Prefix string

	// Delimiter, when set, rolls keys sharing a prefix up to the next
	// occurrence of the delimiter into a single common prefix.
	Delimiter string

	// ContinuationToken resumes a listing after the page that returned
	// it. Empty starts from the first key.
	ContinuationToken string

	// MaxKeys caps the number of objects plus common prefixes in the
	// page. Zero or negative lets the store choose.
	MaxKeys int
}

// ListOutput is one page of a listing.
//
// Objects and CommonPrefixes are each in lexicographic order.
type ListOutput struct {
	Objects        []ObjectInfo
	CommonPrefixes []string

	// NextContinuationToken is empty when the listing is complete.
	NextContinuationToken string
}

// Part identifies one uploaded part of a multipart upload.
type Part struct {
	Number int
	ETag   string
}

// Upload describes an in-progress multipart upload.
type Upload struct {
	Key       string
	UploadID  string
	Initiated time.Time
}

// Operation names, as reported to fault hooks and metrics.
const (
	OpPutObject            = "PutObject"
	OpGetObject            = "GetObject"
	OpHeadObject           = "HeadObject"
	OpListObjects          = "ListObjects"
	OpDeleteObject         = "DeleteObject"
	OpDeleteObjects        = "DeleteObjects"
	OpCopyObject           = "CopyObject"
	OpInitiateMultipart    = "InitiateMultipart"
	OpUploadPart           = "UploadPart"
	OpCompleteMultipart    = "CompleteMultipart"
	OpAbortMultipart       = "AbortMultipart"
	OpListMultipartUploads = "ListMultipartUploads"
)
