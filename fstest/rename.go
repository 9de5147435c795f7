package fstest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"lesiw.io/cosfs"
)

// testCopy tests store-side copies of files and directories.
func testCopy(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_copy"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys, dir+"/src/a.txt", dir+"/src/sub/b.txt")

	if err := fsys.Copy(ctx, dir+"/src/a.txt", dir+"/a-copy.txt"); err != nil {
		t.Fatalf("Copy(file): %v", err)
	}
	checkContent(ctx, t, fsys, dir+"/a-copy.txt", dir+"/src/a.txt")

	if err := fsys.Copy(ctx, dir+"/src", dir+"/dst"); err != nil {
		t.Fatalf("Copy(dir): %v", err)
	}
	checkContent(ctx, t, fsys, dir+"/dst/a.txt", dir+"/src/a.txt")
	checkContent(ctx, t, fsys, dir+"/dst/sub/b.txt", dir+"/src/sub/b.txt")
	checkContent(ctx, t, fsys, dir+"/src/a.txt", dir+"/src/a.txt")

	err := fsys.Copy(ctx, dir+"/src", dir+"/src/inside")
	if !errors.Is(err, cosfs.ErrInvalid) {
		t.Errorf("Copy(dir into itself) = %v, want ErrInvalid", err)
	}
}

// testRename tests moving files and directories.
func testRename(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_rename"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys, dir+"/old.txt", dir+"/tree/x/y.txt")

	err := fsys.Rename(ctx, dir+"/old.txt", dir+"/new.txt")
	if err != nil {
		t.Fatalf("Rename(file): %v", err)
	}
	checkContent(ctx, t, fsys, dir+"/new.txt", dir+"/old.txt")
	if ok, _ := fsys.Exists(ctx, dir+"/old.txt"); ok {
		t.Errorf("Exists(old.txt) after Rename = true, want false")
	}

	if err = fsys.Rename(ctx, dir+"/tree", dir+"/moved"); err != nil {
		t.Fatalf("Rename(dir): %v", err)
	}
	checkContent(ctx, t, fsys, dir+"/moved/x/y.txt", dir+"/tree/x/y.txt")
	if ok, _ := fsys.Exists(ctx, dir+"/tree"); ok {
		t.Errorf("Exists(tree) after Rename = true, want false")
	}

	err = fsys.Rename(ctx, dir+"/new.txt", dir+"/moved/")
	if err != nil {
		t.Fatalf("Rename(file into dir): %v", err)
	}
	checkContent(ctx, t, fsys, dir+"/moved/new.txt", dir+"/old.txt")

	err = fsys.Rename(ctx, dir+"/missing", dir+"/other")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("Rename(missing) = %v, want ErrNotExist", err)
	}
}

func checkContent(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, name, want string,
) {
	t.Helper()
	got, err := fsys.ReadFile(ctx, name)
	if err != nil {
		t.Errorf("ReadFile(%q): %v", name, err)
		return
	}
	if !bytes.Equal(got, []byte(want)) {
		t.Errorf("ReadFile(%q) = %q, want %q", name, got, want)
	}
}
