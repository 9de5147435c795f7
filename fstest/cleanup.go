package fstest

import (
	"context"
	"testing"

	"lesiw.io/cosfs"
)

// cleanup registers cleanup for a path using t.Cleanup.
func cleanup(ctx context.Context, t *testing.T, fsys *cosfs.FS, path string) {
	t.Helper()
	t.Cleanup(func() {
		if err := fsys.RemoveAll(ctx, path); err != nil {
			t.Errorf("cleanup: RemoveAll(%q): %v", path, err)
		}
	})
}

// writeFiles writes each file with its own path as content.
func writeFiles(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, files ...string,
) {
	t.Helper()
	for _, name := range files {
		if err := fsys.WriteFile(ctx, name, []byte(name)); err != nil {
			t.Fatalf("WriteFile(%q): %v", name, err)
		}
	}
}

// names returns the paths of entries, with a trailing slash on
// directories.
func names(entries []cosfs.Entry) []string {
	var s []string
	for _, e := range entries {
		if e.IsDir() {
			s = append(s, e.Path()+"/")
		} else {
			s = append(s, e.Path())
		}
	}
	return s
}
