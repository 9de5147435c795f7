package cosfs

import (
	"context"
	"fmt"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// Remove removes the named file or empty directory.
// Analogous to: [os.Remove], rm, rmdir, S3 DeleteObject.
//
// A directory is empty when nothing but its marker object exists under
// it. Removing a directory that is not empty fails with [ErrIsDir], and
// removing the root only succeeds when the bucket root is empty.
func (f *FS) Remove(ctx context.Context, name string) error {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return &PathError{Op: "remove", Path: name, Err: err}
	}
	return newPathError("remove", p, f.remove(ctx, p, k))
}

func (f *FS) remove(ctx context.Context, p, k string) error {
	if !key.IsDir(p) {
		_, err := f.client.HeadObject(ctx, k)
		if err == nil {
			return f.deleteObject(ctx, k)
		}
		if !objstore.IsNotFound(err) {
			return err
		}
	}

	prefix, err := f.prefix(p)
	if err != nil {
		return err
	}
	out, err := f.client.ListObjects(ctx, objstore.ListInput{
		Prefix:  prefix,
		MaxKeys: 2,
	})
	if err != nil {
		return err
	}
	var marker bool
	for _, o := range out.Objects {
		if o.Key != prefix {
			return fmt.Errorf("%w: directory not empty", ErrIsDir)
		}
		marker = true
	}
	switch {
	case marker:
		return f.deleteObject(ctx, prefix)
	case p == ".":
		return nil
	}
	return ErrNotExist
}

func (f *FS) deleteObject(ctx context.Context, k string) error {
	if err := f.client.DeleteObject(ctx, k); err != nil {
		return err
	}
	f.logger.DebugContext(ctx, "deleted object", "key", k)
	f.cache.invalidate(k)
	return nil
}
