package fstest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"lesiw.io/cosfs"
)

// testImplicitDirs tests that directories exist wherever keys imply them.
func testImplicitDirs(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const base = "test_implicit"
	cleanup(ctx, t, fsys, base)
	writeFiles(ctx, t, fsys, base+"/a/b/c.txt")

	for _, name := range []string{base, base + "/a", base + "/a/b/"} {
		info, err := fsys.Stat(ctx, name)
		if err != nil {
			t.Fatalf("Stat(%q): %v", name, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q).IsDir() = false, want true", name)
		}
	}

	if err := fsys.Remove(ctx, base+"/a/b/c.txt"); err != nil {
		t.Fatalf("Remove(): %v", err)
	}
	if ok, err := fsys.Exists(ctx, base+"/a"); err != nil || ok {
		t.Errorf("Exists(%q) after last file removed = %v, %v, "+
			"want false, nil", base+"/a", ok, err)
	}
}

// testMkdir tests that Mkdir creates a persistent empty directory.
func testMkdir(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_mkdir"
	if err := fsys.Mkdir(ctx, dir); err != nil {
		t.Fatalf("Mkdir(%q): %v", dir, err)
	}
	cleanup(ctx, t, fsys, dir)

	info, err := fsys.Stat(ctx, dir)
	if err != nil {
		t.Fatalf("Stat(%q): %v", dir, err)
	}
	if !info.IsDir() {
		t.Errorf("Stat(%q).IsDir() = false, want true", dir)
	}
	entries, err := fsys.ReadDir(ctx, dir)
	if err != nil {
		t.Fatalf("ReadDir(%q): %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("ReadDir(%q) = %q, want empty", dir, names(entries))
	}

	if err = fsys.Mkdir(ctx, dir); !errors.Is(err, cosfs.ErrExist) {
		t.Errorf("Mkdir(%q) again = %v, want ErrExist", dir, err)
	}
	err = fsys.Mkdir(ctx, dir+"/missing/sub")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("Mkdir() without parent = %v, want ErrNotExist", err)
	}
}

// testMkdirAll tests nested directory creation.
func testMkdirAll(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const base = "test_mkdirall"
	if err := fsys.MkdirAll(ctx, base+"/a/b/c"); err != nil {
		t.Fatalf("MkdirAll(): %v", err)
	}
	cleanup(ctx, t, fsys, base)

	for _, name := range []string{base, base + "/a", base + "/a/b/c"} {
		info, err := fsys.Stat(ctx, name)
		if err != nil {
			t.Fatalf("Stat(%q): %v", name, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q).IsDir() = false, want true", name)
		}
	}
	if err := fsys.MkdirAll(ctx, base+"/a/b/c"); err != nil {
		t.Errorf("MkdirAll() on existing directory: %v", err)
	}

	writeFiles(ctx, t, fsys, base+"/file")
	err := fsys.MkdirAll(ctx, base+"/file")
	if !errors.Is(err, cosfs.ErrNotDir) {
		t.Errorf("MkdirAll() on file = %v, want ErrNotDir", err)
	}
}

// testFileAndDir tests a name that is both an object and a prefix.
func testFileAndDir(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const base = "test_both"
	cleanup(ctx, t, fsys, base)
	writeFiles(ctx, t, fsys, base+"/x", base+"/x/y")

	info, err := fsys.Stat(ctx, base+"/x")
	if err != nil {
		t.Fatalf("Stat(x): %v", err)
	}
	if info.IsDir() {
		t.Errorf("Stat(x).IsDir() = true, want file")
	}
	info, err = fsys.Stat(ctx, base+"/x/")
	if err != nil {
		t.Fatalf("Stat(x/): %v", err)
	}
	if !info.IsDir() {
		t.Errorf("Stat(x/).IsDir() = false, want directory")
	}

	entries, err := fsys.ReadDir(ctx, base+"/x/")
	if err != nil {
		t.Fatalf("ReadDir(x/): %v", err)
	}
	want := []string{base + "/x/y"}
	if got := names(entries); !slices.Equal(got, want) {
		t.Errorf("ReadDir(x/) = %q, want %q", got, want)
	}
}
