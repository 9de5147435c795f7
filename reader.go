package cosfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"lesiw.io/cosfs/key"
)

// A Reader reads an object through a window of buffered ranged GETs.
//
// A Reader keeps the context it was opened with and uses it for every
// request. It is not safe for concurrent use.
type Reader struct {
	f         *FS
	ctx       context.Context
	entry     Entry
	key       string
	blockSize int64

	off    int64  // next read position
	start  int64  // object offset of buf[0]
	buf    []byte // window [start, start+len(buf))
	closed bool
}

var (
	_ io.ReadSeekCloser = (*Reader)(nil)
	_ io.ReaderAt       = (*Reader)(nil)
)

// Open opens the named file for reading.
// Analogous to: [io/fs.Open], [os.Open], cat, S3 GetObject.
//
// Open issues a single HEAD request for the object's size. Content is
// fetched lazily by Read in blocks of at least the FS's block size, or the
// size set on ctx with [WithReadBlockSize].
//
// Open fails with [ErrIsDir] if name is a directory and with
// [ErrNotExist] if nothing exists at name.
func (f *FS) Open(ctx context.Context, name string) (*Reader, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return nil, &PathError{Op: "open", Path: name, Err: err}
	}
	if key.IsDir(p) {
		return nil, &PathError{Op: "open", Path: p, Err: ErrIsDir}
	}
	e, err := f.stat(ctx, p, k)
	if err != nil {
		return nil, newPathError("open", p, err)
	}
	if e.IsDir() {
		return nil, &PathError{Op: "open", Path: p, Err: ErrIsDir}
	}

	blockSize := f.blockSize
	if n := ReadBlockSize(ctx); n > 0 {
		blockSize = n
	}
	return &Reader{
		f:         f,
		ctx:       ctx,
		entry:     e,
		key:       k,
		blockSize: blockSize,
	}, nil
}

// Name returns the path of the file.
func (r *Reader) Name() string { return r.entry.path }

// Size returns the size of the object when it was opened.
func (r *Reader) Size() int64 { return r.entry.size }

// Stat returns the metadata of the object when it was opened.
func (r *Reader) Stat() (Entry, error) {
	if r.closed {
		return Entry{}, r.pathError("stat", ErrClosed)
	}
	return r.entry, nil
}

// Offset returns the position of the next Read.
func (r *Reader) Offset() int64 { return r.off }

// Read reads up to len(p) bytes at the current offset.
//
// If the offset is outside the buffered window, Read fetches
// max(len(p), block size) bytes starting at the offset, capped at the end
// of the object. Reads at or past the end return 0, io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, r.pathError("read", ErrClosed)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if r.off >= r.entry.size {
		return 0, io.EOF
	}
	if !r.buffered(r.off) {
		n := max(int64(len(p)), r.blockSize)
		if err := r.fill(r.off, n); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.buf[r.off-r.start:])
	r.off += int64(n)
	return n, nil
}

// Seek sets the offset of the next Read. It never contacts the store.
// Seeking past the end is allowed; the next Read returns io.EOF.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, r.pathError("seek", ErrClosed)
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += r.off
	case io.SeekEnd:
		offset += r.entry.size
	default:
		return 0, r.pathError("seek",
			fmt.Errorf("%w: whence %d", ErrInvalid, whence))
	}
	if offset < 0 {
		return 0, r.pathError("seek",
			fmt.Errorf("%w: negative position %d", ErrInvalid, offset))
	}
	r.off = offset
	return offset, nil
}

// ReadAt reads len(p) bytes at off. It does not change the offset.
//
// ReadAt is served from the buffered window when the window covers the
// range, and otherwise with a ranged GET that leaves the window intact.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, r.pathError("read", ErrClosed)
	}
	if off < 0 {
		return 0, r.pathError("read",
			fmt.Errorf("%w: negative offset %d", ErrInvalid, off))
	}
	if off >= r.entry.size {
		return 0, io.EOF
	}
	want := min(int64(len(p)), r.entry.size-off)
	var n int
	if r.buffered(off) && off+want <= r.start+int64(len(r.buf)) {
		n = copy(p[:want], r.buf[off-r.start:])
	} else {
		var err error
		if n, err = r.fetch(p[:want], off); err != nil {
			return n, err
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the buffer. Further operations fail with [ErrClosed].
func (r *Reader) Close() error {
	if r.closed {
		return r.pathError("close", ErrClosed)
	}
	r.closed = true
	r.buf = nil
	return nil
}

func (r *Reader) buffered(off int64) bool {
	return off >= r.start && off < r.start+int64(len(r.buf))
}

// fill replaces the window with up to n bytes starting at off.
func (r *Reader) fill(off, n int64) error {
	n = min(n, r.entry.size-off)
	if int64(cap(r.buf)) >= n {
		r.buf = r.buf[:n]
	} else {
		r.buf = make([]byte, n)
	}
	got, err := r.fetch(r.buf, off)
	if err != nil {
		r.buf = r.buf[:0]
		return err
	}
	r.start = off
	r.buf = r.buf[:got]
	return nil
}

// fetch reads exactly len(p) bytes at off with a single ranged GET.
func (r *Reader) fetch(p []byte, off int64) (int, error) {
	r.f.logger.DebugContext(r.ctx, "fetching range",
		"key", r.key, "offset", off, "length", len(p))
	rc, err := r.f.client.GetObject(r.ctx, r.key, off, int64(len(p)))
	if err != nil {
		return 0, r.pathError("read", err)
	}
	defer rc.Close()
	n, err := io.ReadFull(rc, p)
	if errors.Is(err, io.EOF) {
		// The object shrank since it was opened.
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return n, r.pathError("read",
			fmt.Errorf("reading %s at %d: %w", r.key, off, err))
	}
	return n, nil
}

func (r *Reader) pathError(op string, err error) error {
	return newPathError(op, r.entry.path, err)
}
