package fstest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"lesiw.io/cosfs"
)

var walkTree = []string{
	"1.txt",
	"a/2.txt",
	"a/b/3.txt",
	"a/b/c/4.txt",
	"a/b/c/d/5.txt",
	"e/6.txt",
}

func writeWalkTree(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, base string,
) {
	t.Helper()
	cleanup(ctx, t, fsys, base)
	for _, name := range walkTree {
		writeFiles(ctx, t, fsys, base+"/"+name)
	}
}

// testWalk tests that Walk visits every file and implied directory with
// parents before children.
func testWalk(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const base = "test_walk"
	writeWalkTree(ctx, t, fsys, base)

	entries, err := fsys.Walk(ctx, base, 0)
	if err != nil {
		t.Fatalf("Walk(%q): %v", base, err)
	}
	var want []string
	for _, name := range []string{
		"1.txt", "a/", "a/2.txt", "a/b/", "a/b/3.txt", "a/b/c/",
		"a/b/c/4.txt", "a/b/c/d/", "a/b/c/d/5.txt", "e/", "e/6.txt",
	} {
		want = append(want, base+"/"+name)
	}
	got := names(entries)
	if !slices.Equal(got, want) {
		t.Errorf("Walk(%q) = %q, want %q", base, got, want)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		parent := e.Path()[:strings.LastIndex(e.Path(), "/")]
		if parent != base && !seen[parent] {
			t.Errorf("Walk(%q) visited %q before %q",
				base, e.Path(), parent)
		}
		seen[e.Path()] = true
	}

	_, err = fsys.Walk(ctx, base+"/1.txt", 0)
	if !errors.Is(err, cosfs.ErrNotDir) {
		t.Errorf("Walk(file) = %v, want ErrNotDir", err)
	}
	_, err = fsys.Walk(ctx, base+"/missing", 0)
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("Walk(missing) = %v, want ErrNotExist", err)
	}
}

// testWalkDepth tests that Walk respects depth limits.
func testWalkDepth(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, depth int,
) {
	t.Helper()

	const base = "test_walk_depth"
	writeWalkTree(ctx, t, fsys, base)

	entries, err := fsys.Walk(ctx, base, depth)
	if err != nil {
		t.Fatalf("Walk(%q, %d): %v", base, depth, err)
	}
	maxDepth := 0
	for _, e := range entries {
		rel := strings.TrimPrefix(e.Path(), base+"/")
		d := strings.Count(rel, "/") + 1
		maxDepth = max(maxDepth, d)
		if depth > 0 && d > depth {
			t.Errorf("Walk(%q, %d) returned %q at depth %d",
				base, depth, e.Path(), d)
		}
	}
	want := depth
	if depth <= 0 || depth > 5 {
		want = 5
	}
	if maxDepth != want {
		t.Errorf("Walk(%q, %d) reached depth %d, want %d",
			base, depth, maxDepth, want)
	}
}
