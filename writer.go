package cosfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

type writerState int

const (
	stateBuffering writerState = iota
	stateMultipart
	stateCompleted
	stateAborted
)

// A Writer uploads an object.
//
// Data is buffered in memory. An object no larger than the part size,
// including one of exactly the part size, is uploaded with a single PUT on
// Close. Once more than a part's worth of data has been written, the
// Writer starts a multipart upload and uploads each full part as it fills;
// Close uploads the remainder as the last part and completes the upload.
// The object appears atomically on a successful Close and not at all
// otherwise.
//
// If any request fails, the Writer aborts its multipart upload before
// returning the error, and further writes fail with [ErrUploadAborted].
//
// A Writer keeps the context it was created with and uses it for every
// request. It is not safe for concurrent use.
type Writer struct {
	f        *FS
	ctx      context.Context
	name     string
	key      string
	partSize int64
	maxParts int

	state    writerState
	buf      bytes.Buffer
	uploadID string
	parts    []objstore.Part
	written  int64
}

var _ io.WriteCloser = (*Writer)(nil)

// Create opens the named file for writing, replacing any existing file
// when the Writer is closed.
// Analogous to: [os.Create], S3 PutObject.
//
// Create makes no requests. It fails with [ErrIsDir] if name has a
// trailing slash or names the root.
func (f *FS) Create(ctx context.Context, name string) (*Writer, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return nil, &PathError{Op: "create", Path: name, Err: err}
	}
	if key.IsDir(p) {
		return nil, &PathError{Op: "create", Path: p, Err: ErrIsDir}
	}
	return f.newWriter(ctx, p, k), nil
}

func (f *FS) newWriter(ctx context.Context, p, k string) *Writer {
	return &Writer{
		f:        f,
		ctx:      ctx,
		name:     p,
		key:      k,
		partSize: f.partSize,
		maxParts: f.maxParts,
	}
}

// Name returns the path of the file.
func (w *Writer) Name() string { return w.name }

// Written returns the number of bytes accepted by Write.
func (w *Writer) Written() int64 { return w.written }

// Write buffers p, uploading every full part once the buffer exceeds the
// part size.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.check("write"); err != nil {
		return 0, err
	}
	w.buf.Write(p)
	w.written += int64(len(p))
	for int64(w.buf.Len()) > w.partSize {
		if err := w.flushPart(); err != nil {
			return len(p), w.fail("write", err)
		}
	}
	return len(p), nil
}

// Close uploads any buffered data and completes the object.
//
// Closing a completed Writer returns nil. Closing an aborted Writer fails
// with [ErrUploadAborted].
func (w *Writer) Close() error {
	switch w.state {
	case stateCompleted:
		return nil
	case stateAborted:
		return w.pathError("close", ErrUploadAborted)
	case stateBuffering:
		if err := w.put(); err != nil {
			return w.fail("close", err)
		}
	case stateMultipart:
		if w.buf.Len() > 0 {
			if err := w.flushPart(); err != nil {
				return w.fail("close", err)
			}
		}
		if err := w.complete(); err != nil {
			return w.fail("close", err)
		}
	}
	w.state = stateCompleted
	w.buf = bytes.Buffer{}
	w.f.cache.invalidate(w.key)
	return nil
}

// Abort discards the Writer's data and aborts its multipart upload, if
// any. The object is left unchanged.
//
// Aborting an aborted Writer returns nil. Aborting a completed Writer
// fails with [ErrClosed].
func (w *Writer) Abort() error {
	switch w.state {
	case stateAborted:
		return nil
	case stateCompleted:
		return w.pathError("abort", ErrClosed)
	}
	return newPathError("abort", w.name, w.abort())
}

func (w *Writer) check(op string) error {
	switch w.state {
	case stateCompleted:
		return w.pathError(op, ErrClosed)
	case stateAborted:
		return w.pathError(op, ErrUploadAborted)
	}
	return nil
}

// put uploads the buffer as a single object.
func (w *Writer) put() error {
	size := int64(w.buf.Len())
	_, err := w.f.client.PutObject(
		w.ctx, w.key, bytes.NewReader(w.buf.Bytes()), size,
	)
	if err != nil {
		return fmt.Errorf("putting %d bytes: %w", size, err)
	}
	w.f.logger.DebugContext(w.ctx, "put object",
		"key", w.key, "size", size)
	return nil
}

// flushPart uploads up to one part from the front of the buffer,
// initiating the multipart upload first if needed.
func (w *Writer) flushPart() error {
	if w.state == stateBuffering {
		id, err := w.f.client.InitiateMultipart(w.ctx, w.key)
		if err != nil {
			return fmt.Errorf("initiating multipart upload: %w", err)
		}
		w.uploadID = id
		w.state = stateMultipart
		w.f.logger.DebugContext(w.ctx, "initiated multipart upload",
			"key", w.key, "upload", id, "part_size", w.partSize)
	}
	if len(w.parts) >= w.maxParts {
		return fmt.Errorf("%w: object exceeds %d parts of %d bytes",
			ErrInvalid, w.maxParts, w.partSize)
	}

	number := len(w.parts) + 1
	size := min(int64(w.buf.Len()), w.partSize)
	data := w.buf.Next(int(size))
	etag, err := w.f.client.UploadPart(
		w.ctx, w.key, w.uploadID, number, bytes.NewReader(data), size,
	)
	if err != nil {
		return fmt.Errorf("uploading part %d: %w", number, err)
	}
	w.parts = append(w.parts, objstore.Part{Number: number, ETag: etag})
	w.f.logger.DebugContext(w.ctx, "uploaded part",
		"key", w.key, "upload", w.uploadID, "part", number, "size", size)
	return nil
}

func (w *Writer) complete() error {
	err := w.f.client.CompleteMultipart(w.ctx, w.key, w.uploadID, w.parts)
	if err != nil {
		return fmt.Errorf("completing multipart upload: %w", err)
	}
	w.f.logger.DebugContext(w.ctx, "completed multipart upload",
		"key", w.key, "upload", w.uploadID, "parts", len(w.parts),
		"size", w.written)
	return nil
}

// fail aborts the Writer after err and returns err, joined with any
// error from the abort.
func (w *Writer) fail(op string, err error) error {
	if aerr := w.abort(); aerr != nil {
		err = errors.Join(err, aerr)
	}
	return newPathError(op, w.name, err)
}

// abort moves the Writer to the aborted state and aborts its multipart
// upload on a context that is not canceled with the Writer's.
func (w *Writer) abort() error {
	w.state = stateAborted
	w.buf = bytes.Buffer{}
	if w.uploadID == "" {
		return nil
	}
	ctx := context.WithoutCancel(w.ctx)
	err := w.f.client.AbortMultipart(ctx, w.key, w.uploadID)
	if err != nil && !isNoSuchUpload(err) {
		w.f.logger.WarnContext(ctx, "failed to abort multipart upload",
			"key", w.key, "upload", w.uploadID, "err", err)
		return fmt.Errorf("aborting upload %s: %w", w.uploadID, err)
	}
	w.f.logger.DebugContext(ctx, "aborted multipart upload",
		"key", w.key, "upload", w.uploadID)
	return nil
}

func (w *Writer) pathError(op string, err error) error {
	return &PathError{Op: op, Path: w.name, Err: err}
}
