package fstest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"

	"lesiw.io/cosfs"
)

// testMixedOperations combines writes, listings, copies, renames and
// removals in one realistic workflow.
func testMixedOperations(
	ctx context.Context, t *testing.T, fsys *cosfs.FS,
) {
	const base = "stress_test"
	if err := fsys.MkdirAll(ctx, base+"/a/b/c"); err != nil {
		t.Fatalf("MkdirAll(): %v", err)
	}
	cleanup(ctx, t, fsys, base)

	testFiles := map[string][]byte{
		base + "/root.txt":         []byte("root level"),
		base + "/a/level1.txt":     []byte("level 1"),
		base + "/a/b/level2.txt":   []byte("level 2"),
		base + "/a/b/c/level3.txt": []byte("level 3"),
		base + "/d/other.txt":      []byte("other branch"),
	}
	for path, content := range testFiles {
		if err := fsys.WriteFile(ctx, path, content); err != nil {
			t.Fatalf("WriteFile(%q): %v", path, err)
		}
	}

	entries, err := fsys.Walk(ctx, base, 0)
	if err != nil {
		t.Fatalf("Walk(%q): %v", base, err)
	}
	var files int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files++
		data, rerr := fsys.ReadFile(ctx, e.Path())
		if rerr != nil {
			t.Errorf("ReadFile(%q): %v", e.Path(), rerr)
			continue
		}
		if want := testFiles[e.Path()]; !bytes.Equal(data, want) {
			t.Errorf("ReadFile(%q) = %q, want %q", e.Path(), data, want)
		}
	}
	if files != len(testFiles) {
		t.Errorf("Walk(%q) found %d files, want %d",
			base, files, len(testFiles))
	}

	if err = fsys.Copy(ctx, base+"/a/b", base+"/d/b"); err != nil {
		t.Fatalf("Copy(): %v", err)
	}
	if err = fsys.Rename(ctx, base+"/d", base+"/e"); err != nil {
		t.Fatalf("Rename(): %v", err)
	}
	if err = fsys.RemoveAll(ctx, base+"/a"); err != nil {
		t.Fatalf("RemoveAll(): %v", err)
	}

	entries, err = fsys.List(ctx, base, true)
	if err != nil {
		t.Fatalf("List(%q): %v", base, err)
	}
	want := []string{
		base + "/e/b/c/",
		base + "/e/b/c/level3.txt",
		base + "/e/b/level2.txt",
		base + "/e/other.txt",
		base + "/root.txt",
	}
	got := names(entries)
	if !slices.Equal(got, want) {
		t.Errorf("List(%q) = %q, want %q", base, got, want)
	}
}

// testConcurrentReads reads one object through many Readers at once.
func testConcurrentReads(
	ctx context.Context, t *testing.T, fsys *cosfs.FS,
) {
	const name = "concurrent_read.txt"
	content := bytes.Repeat([]byte("0123456789"), 100)
	if err := fsys.WriteFile(ctx, name, content); err != nil {
		t.Fatalf("WriteFile(%q): %v", name, err)
	}
	cleanup(ctx, t, fsys, name)

	rctx := cosfs.WithReadBlockSize(ctx, 64)
	const readers = 10
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := fsys.Open(rctx, name)
			if err != nil {
				errs <- fmt.Errorf("reader %d: Open(): %w", i, err)
				return
			}
			defer r.Close()
			if _, err = r.Seek(int64(i*10), io.SeekStart); err != nil {
				errs <- fmt.Errorf("reader %d: Seek(): %w", i, err)
				return
			}
			data, err := io.ReadAll(r)
			if err != nil {
				errs <- fmt.Errorf("reader %d: ReadAll(): %w", i, err)
				return
			}
			if !bytes.Equal(data, content[i*10:]) {
				errs <- fmt.Errorf("reader %d: content mismatch", i)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
