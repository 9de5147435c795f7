package cosfs

import (
	"context"
	"strings"

	"lesiw.io/cosfs/key"
)

// Touch creates the named file as an empty object, truncating it if it
// already exists.
// Analogous to: touch, truncate -s 0.
func (f *FS) Touch(ctx context.Context, name string) error {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return &PathError{Op: "touch", Path: name, Err: err}
	}
	if key.IsDir(p) {
		return &PathError{Op: "touch", Path: p, Err: ErrIsDir}
	}
	_, err = f.client.PutObject(ctx, k, strings.NewReader(""), 0)
	if err != nil {
		return newPathError("touch", p, err)
	}
	f.cache.invalidate(k)
	return nil
}
