package cosfs

import (
	"context"
	"fmt"
	"strings"

	"lesiw.io/cosfs/key"
)

// Copy copies the file or directory src to dst with store-side copies.
// Analogous to: cp -r, S3 CopyObject.
//
// If dst has a trailing slash, src is copied into that directory under its
// own base name. Copying a directory copies every object under it,
// including its marker. Existing objects at the destination are replaced.
// Copy is not atomic: if it fails, some objects may already be copied.
func (f *FS) Copy(ctx context.Context, src, dst string) error {
	_, err := f.copy(ctx, "copy", src, dst)
	return err
}

// copy copies src to dst and returns the source keys it copied.
func (f *FS) copy(
	ctx context.Context, op, src, dst string,
) ([]string, error) {
	ps, ks, err := f.lookup(ctx, src)
	if err != nil {
		return nil, &PathError{Op: op, Path: src, Err: err}
	}
	pd, err := f.clean(ctx, dst)
	if err != nil {
		return nil, &PathError{Op: op, Path: dst, Err: err}
	}
	if key.IsDir(pd) {
		pd = key.Join(pd, key.Base(ps))
	}
	kd, err := f.keys.Key(pd)
	if err != nil {
		return nil, &PathError{Op: op, Path: dst, Err: err}
	}

	e, err := f.stat(ctx, ps, ks)
	if err != nil {
		return nil, newPathError(op, ps, err)
	}
	if !e.IsDir() {
		if ks == kd {
			return nil, nil
		}
		if err := f.client.CopyObject(ctx, ks, kd); err != nil {
			return nil, newPathError(op, ps, err)
		}
		f.logger.DebugContext(ctx, "copied object", "src", ks, "dst", kd)
		f.cache.invalidate(kd)
		return []string{ks}, nil
	}

	keys, err := f.copyDir(ctx, ps, pd)
	return keys, newPathError(op, ps, err)
}

func (f *FS) copyDir(ctx context.Context, ps, pd string) ([]string, error) {
	srcPrefix, err := f.prefix(ps)
	if err != nil {
		return nil, err
	}
	dstPrefix, err := f.prefix(pd)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(dstPrefix, srcPrefix) {
		return nil, fmt.Errorf(
			"%w: cannot copy %s into itself", ErrInvalid, ps,
		)
	}

	l, err := f.listPrefix(ctx, srcPrefix, true)
	if err != nil {
		return nil, err
	}
	defer f.cache.purge()
	keys := make([]string, 0, len(l.objects))
	for _, o := range l.objects {
		kd := dstPrefix + o.Key[len(srcPrefix):]
		if err := f.client.CopyObject(ctx, o.Key, kd); err != nil {
			return keys, err
		}
		keys = append(keys, o.Key)
	}
	f.logger.DebugContext(ctx, "copied directory",
		"src", srcPrefix, "dst", dstPrefix, "objects", len(keys))
	return keys, nil
}
