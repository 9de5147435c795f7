package cosfs

import (
	"context"
	"fmt"
)

// Rename moves the file or directory src to dst.
// Analogous to: [os.Rename], mv.
//
// Object stores cannot rename, so Rename copies src to dst as [FS.Copy]
// does and then deletes the source objects. It is not atomic: if the
// deletion fails, both copies exist, and running Rename or [FS.RemoveAll]
// on src again completes the move.
func (f *FS) Rename(ctx context.Context, src, dst string) error {
	keys, err := f.copy(ctx, "rename", src, dst)
	if err != nil {
		return err
	}
	if err := f.deleteKeys(ctx, keys); err != nil {
		return newPathError("rename", src,
			fmt.Errorf("removing source after copy: %w", err))
	}
	f.cache.purge()
	return nil
}
