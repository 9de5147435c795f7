package cosfs

import (
	"context"
	"errors"
	"strings"

	"lesiw.io/cosfs/key"
)

// Mkdir creates a directory marker object for the named directory.
// Analogous to: [os.Mkdir], mkdir.
//
// Mkdir fails with [ErrExist] if a file or directory already exists at
// name, and with [ErrNotExist] if its parent directory does not exist.
func (f *FS) Mkdir(ctx context.Context, name string) error {
	p, err := f.clean(ctx, name)
	if err != nil {
		return &PathError{Op: "mkdir", Path: name, Err: err}
	}
	p = trimDir(p)
	return newPathError("mkdir", p, f.mkdir(ctx, p))
}

func (f *FS) mkdir(ctx context.Context, p string) error {
	if p == "." {
		return ErrExist
	}
	k, err := f.keys.Key(p)
	if err != nil {
		return err
	}
	_, err = f.stat(ctx, p, k)
	switch {
	case err == nil:
		return ErrExist
	case !errors.Is(err, ErrNotExist):
		return err
	}

	if parent := key.Dir(p); parent != "." {
		pk, err := f.keys.Key(parent)
		if err != nil {
			return err
		}
		e, err := f.stat(ctx, parent, pk)
		if err != nil {
			return err
		}
		if !e.IsDir() {
			return ErrNotDir
		}
	}
	return f.putMarker(ctx, p)
}

// MkdirAll creates a directory marker object for the named directory,
// unless the directory already exists.
// Analogous to: [os.MkdirAll], mkdir -p.
//
// Parent directories need no markers of their own, since a marker implies
// its parents. MkdirAll fails with [ErrNotDir] if a file exists at name.
func (f *FS) MkdirAll(ctx context.Context, name string) error {
	p, err := f.clean(ctx, name)
	if err != nil {
		return &PathError{Op: "mkdir", Path: name, Err: err}
	}
	p = trimDir(p)
	return newPathError("mkdir", p, f.mkdirAll(ctx, p))
}

func (f *FS) mkdirAll(ctx context.Context, p string) error {
	if p == "." {
		return nil
	}
	k, err := f.keys.Key(p)
	if err != nil {
		return err
	}
	e, err := f.stat(ctx, p, k)
	switch {
	case err == nil && e.IsDir():
		return nil
	case err == nil:
		return ErrNotDir
	case !errors.Is(err, ErrNotExist):
		return err
	}
	return f.putMarker(ctx, p)
}

// putMarker writes the zero-byte marker object for the directory p.
func (f *FS) putMarker(ctx context.Context, p string) error {
	prefix, err := f.prefix(p)
	if err != nil {
		return err
	}
	_, err = f.client.PutObject(ctx, prefix, strings.NewReader(""), 0)
	if err != nil {
		return err
	}
	f.logger.DebugContext(ctx, "created directory marker", "key", prefix)
	f.cache.invalidate(prefix)
	return nil
}
