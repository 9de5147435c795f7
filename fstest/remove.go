package fstest

import (
	"context"
	"errors"
	"testing"

	"lesiw.io/cosfs"
)

// testRemove tests removal of files and empty directories.
func testRemove(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_remove"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys, dir+"/file.txt", dir+"/full/nested.txt")
	if err := fsys.Mkdir(ctx, dir+"/empty"); err != nil {
		t.Fatalf("Mkdir(): %v", err)
	}

	for _, name := range []string{dir + "/file.txt", dir + "/empty"} {
		if err := fsys.Remove(ctx, name); err != nil {
			t.Fatalf("Remove(%q): %v", name, err)
		}
		if ok, err := fsys.Exists(ctx, name); err != nil || ok {
			t.Errorf("Exists(%q) after Remove = %v, %v, want false, nil",
				name, ok, err)
		}
	}

	err := fsys.Remove(ctx, dir+"/full")
	if !errors.Is(err, cosfs.ErrIsDir) {
		t.Errorf("Remove(non-empty dir) = %v, want ErrIsDir", err)
	}
	err = fsys.Remove(ctx, dir+"/missing")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("Remove(missing) = %v, want ErrNotExist", err)
	}
}

// testRemoveAll tests recursive removal.
func testRemoveAll(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_removeall"
	cleanup(ctx, t, fsys, dir+"-keep.txt")
	writeFiles(ctx, t, fsys,
		dir+"/a.txt",
		dir+"/sub/b.txt",
		dir+"/sub/deeper/c.txt",
		dir+"-keep.txt",
	)
	if err := fsys.MkdirAll(ctx, dir+"/sub/empty"); err != nil {
		t.Fatalf("MkdirAll(): %v", err)
	}

	if err := fsys.RemoveAll(ctx, dir); err != nil {
		t.Fatalf("RemoveAll(%q): %v", dir, err)
	}
	if ok, err := fsys.Exists(ctx, dir); err != nil || ok {
		t.Errorf("Exists(%q) after RemoveAll = %v, %v, want false, nil",
			dir, ok, err)
	}
	if ok, err := fsys.Exists(ctx, dir+"-keep.txt"); err != nil || !ok {
		t.Errorf("Exists(sibling) after RemoveAll = %v, %v, want true",
			ok, err)
	}
	if err := fsys.RemoveAll(ctx, dir); err != nil {
		t.Errorf("RemoveAll(missing): %v", err)
	}
}
