package fstest

import (
	"context"
	"strings"
	"testing"

	"lesiw.io/cosfs"
)

// testWorkDir tests working directory context behavior.
func testWorkDir(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_workdir"
	cleanup(ctx, t, fsys, dir)
	writeFiles(ctx, t, fsys, dir+"/data/file.txt", dir+"/top.txt")

	wctx := cosfs.WithWorkDir(ctx, dir+"/data")
	tests := []struct {
		name string
		want string
	}{
		{"file.txt", dir + "/data/file.txt"},
		{"./file.txt", dir + "/data/file.txt"},
		{"../top.txt", dir + "/top.txt"},
		{"/" + dir + "/top.txt", dir + "/top.txt"},
	}
	for _, tt := range tests {
		data, err := fsys.ReadFile(wctx, tt.name)
		if err != nil {
			t.Errorf("ReadFile(%q) in %s: %v", tt.name, dir, err)
			continue
		}
		if got := string(data); got != tt.want {
			t.Errorf("ReadFile(%q) in %s = %q, want %q",
				tt.name, dir, got, tt.want)
		}
	}

	if err := fsys.WriteFile(wctx, "new.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile(new.txt) in %s: %v", dir, err)
	}
	if ok, _ := fsys.Exists(ctx, dir+"/data/new.txt"); !ok {
		t.Errorf("WriteFile(new.txt) did not resolve against WorkDir")
	}
}

// testAbs tests cos:// URL resolution.
func testAbs(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	abs, err := fsys.Abs(ctx, "dir/file.txt")
	if err != nil {
		t.Fatalf("Abs(dir/file.txt): %v", err)
	}
	prefix := "cos://" + fsys.Bucket() + "/"
	if !strings.HasPrefix(abs, prefix) {
		t.Errorf("Abs(dir/file.txt) = %q, want prefix %q", abs, prefix)
	}
	if !strings.HasSuffix(abs, "/dir/file.txt") {
		t.Errorf("Abs(dir/file.txt) = %q, want suffix /dir/file.txt", abs)
	}

	wabs, err := fsys.Abs(cosfs.WithWorkDir(ctx, "dir"), "file.txt")
	if err != nil {
		t.Fatalf("Abs(file.txt) in dir: %v", err)
	}
	if wabs != abs {
		t.Errorf("Abs(file.txt) in dir = %q, want %q", wabs, abs)
	}

	again, err := fsys.Abs(ctx, abs)
	if err != nil {
		t.Fatalf("Abs(%q): %v", abs, err)
	}
	if again != abs {
		t.Errorf("Abs(%q) = %q, want unchanged", abs, again)
	}
}
