package fstest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/key"
)

// testGlob tests pattern matching over listings.
func testGlob(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_glob"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys,
		dir+"/test1.txt",
		dir+"/test2.txt",
		dir+"/data.csv",
		dir+"/sub/test3.txt",
		dir+"/sub/deep/test4.txt",
	)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"/*.txt", []string{"/test1.txt", "/test2.txt"}},
		{"/test?.*", []string{"/test1.txt", "/test2.txt"}},
		{"/*/*.txt", []string{"/sub/test3.txt"}},
		{"/**/*.txt", []string{
			"/sub/deep/test4.txt", "/sub/test3.txt",
			"/test1.txt", "/test2.txt",
		}},
		{"/*/", []string{"/sub"}},
		{"/*.go", nil},
		{"/data.csv", []string{"/data.csv"}},
	}
	for _, tt := range tests {
		pattern := dir + tt.pattern
		got, err := fsys.Glob(ctx, pattern)
		if err != nil {
			t.Errorf("Glob(%q): %v", pattern, err)
			continue
		}
		var want []string
		for _, w := range tt.want {
			want = append(want, dir+w)
		}
		if !slices.Equal(got, want) {
			t.Errorf("Glob(%q) = %q, want %q", pattern, got, want)
		}
	}

	_, err := fsys.Glob(ctx, dir+"/[")
	if !errors.Is(err, key.ErrBadPattern) {
		t.Errorf("Glob(bad pattern) = %v, want ErrBadPattern", err)
	}
}
