package fstest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"lesiw.io/cosfs"
)

// testReadDir tests immediate listings, ordering and error cases.
func testReadDir(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_readdir"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys,
		dir+"/c.txt",
		dir+"/a.txt",
		dir+"/sub/nested.txt",
		dir+"/b.txt",
		dir+"-sibling.txt",
	)
	if err := fsys.Mkdir(ctx, dir+"/empty"); err != nil {
		t.Fatalf("Mkdir(): %v", err)
	}

	entries, err := fsys.ReadDir(ctx, dir)
	if err != nil {
		t.Fatalf("ReadDir(%q): %v", dir, err)
	}
	want := []string{
		dir + "/a.txt",
		dir + "/b.txt",
		dir + "/c.txt",
		dir + "/empty/",
		dir + "/sub/",
	}
	if got := names(entries); !slices.Equal(got, want) {
		t.Errorf("ReadDir(%q) = %q, want %q", dir, got, want)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if got, want := e.Size(), int64(len(e.Path())); got != want {
			t.Errorf("%s: Size() = %d, want %d", e.Path(), got, want)
		}
		if e.ModTime().IsZero() {
			t.Errorf("%s: ModTime() is zero", e.Path())
		}
	}

	_, err = fsys.ReadDir(ctx, dir+"/a.txt")
	if !errors.Is(err, cosfs.ErrNotDir) {
		t.Errorf("ReadDir(file) = %v, want ErrNotDir", err)
	}
	_, err = fsys.ReadDir(ctx, dir+"/missing")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("ReadDir(missing) = %v, want ErrNotExist", err)
	}
}

// testList tests recursive listings.
func testList(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_list"
	cleanup(ctx, t, fsys, dir)
	files := []string{
		dir + "/a/1.txt",
		dir + "/a/b/2.txt",
		dir + "/c.txt",
	}
	writeFiles(ctx, t, fsys, files...)

	entries, err := fsys.List(ctx, dir, true)
	if err != nil {
		t.Fatalf("List(%q, true): %v", dir, err)
	}
	if got := names(entries); !slices.Equal(got, files) {
		t.Errorf("List(%q, true) = %q, want %q", dir, got, files)
	}

	entries, err = fsys.List(ctx, dir+"/c.txt", false)
	if err != nil {
		t.Fatalf("List(file): %v", err)
	}
	want := []string{dir + "/c.txt"}
	if got := names(entries); !slices.Equal(got, want) {
		t.Errorf("List(file) = %q, want %q", got, want)
	}
}
