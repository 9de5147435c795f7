package cosfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError

// newPathError creates a PathError if err is not nil, otherwise returns nil.
// Store errors are classified first.
func newPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Op: op, Path: path, Err: classify(err)}
}

// Generic file system errors.
var (
	ErrInvalid     = fs.ErrInvalid
	ErrPermission  = fs.ErrPermission
	ErrExist       = fs.ErrExist
	ErrNotExist    = fs.ErrNotExist
	ErrClosed      = fs.ErrClosed
	ErrUnsupported = errors.ErrUnsupported
)

// Errors specific to object storage.
var (
	// ErrIsDir is returned when a file operation names a directory.
	ErrIsDir = errors.New("is a directory")

	// ErrNotDir is returned when a directory operation names a file.
	ErrNotDir = errors.New("not a directory")

	// ErrInvalidPath is returned for malformed paths, paths that climb
	// above the root and keys the store rejects. It matches [ErrInvalid].
	ErrInvalidPath = key.ErrInvalidPath

	// ErrTransient is returned for failures that may succeed when
	// retried: throttling, server errors, network errors and truncated
	// responses.
	ErrTransient = errors.New("transient store failure")

	// ErrUploadAborted is returned by a [Writer] whose multipart upload
	// was aborted.
	ErrUploadAborted = errors.New("upload aborted")
)

// storeError attaches a filesystem error kind to a store error.
type storeError struct {
	kind error
	err  error
}

func (e *storeError) Error() string { return e.err.Error() }

func (e *storeError) Unwrap() []error { return []error{e.kind, e.err} }

// classify maps a store error onto the filesystem error taxonomy. The
// store error is kept in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *storeError
	if errors.As(err, &se) {
		return err
	}
	if kind := kindOf(err); kind != nil {
		return &storeError{kind: kind, err: err}
	}
	return err
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrTransient
	}

	var re *objstore.ResponseError
	if errors.As(err, &re) {
		switch code := re.StatusCode; {
		case code == http.StatusNotFound &&
			re.Code == objstore.CodeNoSuchUpload:
			return ErrUploadAborted
		case code == http.StatusNotFound:
			return ErrNotExist
		case code == http.StatusUnauthorized,
			code == http.StatusForbidden:
			return ErrPermission
		case code == http.StatusConflict,
			code == http.StatusPreconditionFailed:
			return ErrExist
		case code == http.StatusTooManyRequests,
			code >= http.StatusInternalServerError:
			return ErrTransient
		case code == http.StatusBadRequest &&
			(re.Code == objstore.CodeKeyTooLong ||
				re.Code == objstore.CodeInvalidObjectName):
			return ErrInvalidPath
		}
		return nil
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ErrTransient
	}
	return nil
}

// isNoSuchUpload reports whether err says a multipart upload is gone.
func isNoSuchUpload(err error) bool {
	var re *objstore.ResponseError
	return errors.As(err, &re) && re.Code == objstore.CodeNoSuchUpload
}
