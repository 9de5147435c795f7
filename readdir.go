package cosfs

import (
	"context"
	"errors"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// List returns the entries under the named directory, in key order.
// Analogous to: ls, S3 ListObjectsV2.
//
// A non-recursive listing returns the directory's immediate children,
// with subdirectories synthesized from common key prefixes. A recursive
// listing returns every object under the directory; directory markers are
// reported as directories, but directories implied only by longer keys
// are not.
//
// If name is a file, List returns its own entry. If name does not exist,
// List fails with [ErrNotExist].
func (f *FS) List(
	ctx context.Context, name string, recursive bool,
) ([]Entry, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return nil, &PathError{Op: "list", Path: name, Err: err}
	}
	entries, err := f.list(ctx, p, recursive)
	if err == nil || !errors.Is(err, ErrNotExist) || key.IsDir(p) {
		return entries, newPathError("list", p, err)
	}
	info, err := f.client.HeadObject(ctx, k)
	if err != nil {
		if objstore.IsNotFound(err) {
			err = ErrNotExist
		}
		return nil, newPathError("list", p, err)
	}
	return []Entry{
		fileEntry(p, info.Size, info.LastModified, info.ETag),
	}, nil
}

// ReadDir returns the immediate children of the named directory, in key
// order.
// Analogous to: [os.ReadDir], [io/fs.ReadDir], ls.
//
// ReadDir fails with [ErrNotDir] if name is a file and with [ErrNotExist]
// if it does not exist.
func (f *FS) ReadDir(ctx context.Context, name string) ([]Entry, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return nil, &PathError{Op: "readdir", Path: name, Err: err}
	}
	entries, err := f.list(ctx, p, false)
	if err == nil || !errors.Is(err, ErrNotExist) || key.IsDir(p) {
		return entries, newPathError("readdir", p, err)
	}
	if _, herr := f.client.HeadObject(ctx, k); herr == nil {
		err = ErrNotDir
	} else if !objstore.IsNotFound(herr) {
		err = herr
	}
	return nil, newPathError("readdir", p, err)
}

// list lists the directory at the clean path p. It fails with ErrNotExist
// if nothing exists under the directory's prefix.
func (f *FS) list(
	ctx context.Context, p string, recursive bool,
) ([]Entry, error) {
	prefix, err := f.prefix(p)
	if err != nil {
		return nil, err
	}
	l, err := f.listPrefix(ctx, prefix, recursive)
	if err != nil {
		return nil, err
	}
	if l.empty() && p != "." {
		return nil, ErrNotExist
	}
	return f.entries(prefix, l)
}
