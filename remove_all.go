package cosfs

import (
	"context"
	"errors"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// RemoveAll removes name and any children it contains.
// Analogous to: [os.RemoveAll], rm -rf, S3 DeleteObjects.
//
// RemoveAll deletes the object at name and every object under name's
// prefix, in batches of up to [objstore.MaxDeleteKeys] keys when the
// client implements [objstore.BatchDeleter]. It is not atomic: if it
// fails, some objects may already be gone. Removing a path that does not
// exist is not an error.
func (f *FS) RemoveAll(ctx context.Context, name string) error {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return &PathError{Op: "removeall", Path: name, Err: err}
	}
	return newPathError("removeall", p, f.removeAll(ctx, p, k))
}

func (f *FS) removeAll(ctx context.Context, p, k string) error {
	var keys []string
	if !key.IsDir(p) && k != "" {
		keys = append(keys, k)
	}
	prefix, err := f.prefix(p)
	if err != nil {
		return err
	}
	f.cache.purge()
	l, err := f.listPrefix(ctx, prefix, true)
	if err != nil {
		return err
	}
	for _, o := range l.objects {
		keys = append(keys, o.Key)
	}
	defer f.cache.purge()
	return f.deleteKeys(ctx, keys)
}

// deleteKeys deletes keys in batches when the client supports batch
// deletes, and one at a time otherwise.
func (f *FS) deleteKeys(ctx context.Context, keys []string) error {
	total := len(keys)
	batch, ok := f.client.(objstore.BatchDeleter)
	for len(keys) > 0 {
		if ok {
			n := min(len(keys), objstore.MaxDeleteKeys)
			err := batch.DeleteObjects(ctx, keys[:n])
			if err == nil {
				keys = keys[n:]
				continue
			}
			if !errors.Is(err, ErrUnsupported) {
				return err
			}
			ok = false
		}
		if err := f.client.DeleteObject(ctx, keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}
	f.logger.DebugContext(ctx, "deleted objects", "count", total)
	return nil
}
