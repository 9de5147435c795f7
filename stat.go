package cosfs

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// Stat returns metadata for the named file or directory.
// Analogous to: [io/fs.Stat], [os.Stat], stat, ls -l, S3 HeadObject.
//
// A file is found when its exact key exists. Otherwise a directory is
// found when a marker object or any other key exists under the name's
// prefix. When both exist the file is reported, unless name has a
// trailing slash. The root always exists.
func (f *FS) Stat(ctx context.Context, name string) (Entry, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return Entry{}, &PathError{Op: "stat", Path: name, Err: err}
	}
	e, err := f.stat(ctx, p, k)
	return e, newPathError("stat", p, err)
}

// Exists reports whether the named file or directory exists.
// Analogous to: test -e.
func (f *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := f.Stat(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotExist):
		return false, nil
	}
	return false, err
}

func (f *FS) stat(ctx context.Context, p, k string) (Entry, error) {
	if p == "." {
		return dirEntry(".", time.Time{}), nil
	}
	if e, ok, err := f.statCached(p, k); ok {
		return e, err
	}
	if !key.IsDir(p) {
		info, err := f.client.HeadObject(ctx, k)
		if err == nil {
			return fileEntry(p, info.Size, info.LastModified, info.ETag), nil
		}
		if !objstore.IsNotFound(err) {
			return Entry{}, err
		}
	}
	prefix, err := f.prefix(p)
	if err != nil {
		return Entry{}, err
	}
	found, first, err := f.probeDir(ctx, prefix)
	if err != nil {
		return Entry{}, err
	}
	if !found {
		return Entry{}, ErrNotExist
	}
	return dirEntry(p, first.LastModified), nil
}

// statCached answers a stat from the cached listing of the parent
// directory. A complete listing that lacks the name proves it does not
// exist.
func (f *FS) statCached(p, k string) (e Entry, ok bool, err error) {
	if f.cache == nil {
		return Entry{}, false, nil
	}
	parent, err := f.prefix(key.Dir(p))
	if err != nil {
		return Entry{}, false, nil
	}
	l, ok := f.cache.get(parent, false)
	if !ok {
		return Entry{}, false, nil
	}
	if !key.IsDir(p) {
		i, found := slices.BinarySearchFunc(
			l.objects, k,
			func(o objstore.ObjectInfo, target string) int {
				return strings.Compare(o.Key, target)
			},
		)
		if found {
			o := l.objects[i]
			return fileEntry(p, o.Size, o.LastModified, o.ETag), true, nil
		}
	}
	dir := k
	if !key.IsDirMarker(dir) {
		dir += key.Delimiter
	}
	if _, found := slices.BinarySearch(l.prefixes, dir); found {
		return dirEntry(p, time.Time{}), true, nil
	}
	return Entry{}, true, ErrNotExist
}
