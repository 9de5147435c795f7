package fstest

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"lesiw.io/cosfs"
)

// testStat tests file and directory metadata.
func testStat(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const dir = "test_stat"
	cleanup(ctx, t, fsys, dir)
	file := dir + "/file.txt"
	data := []byte("stat me")
	if err := fsys.WriteFile(ctx, file, data); err != nil {
		t.Fatalf("WriteFile(%q): %v", file, err)
	}

	t.Run("StatFile", func(t *testing.T) {
		info, err := fsys.Stat(ctx, file)
		if err != nil {
			t.Fatalf("Stat(%q) = %v", file, err)
		}
		if info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = true, want false", file)
		}
		if got, want := info.Name(), "file.txt"; got != want {
			t.Errorf("Stat(%q): Name() = %q, want %q", file, got, want)
		}
		if got, want := info.Size(), int64(len(data)); got != want {
			t.Errorf("Stat(%q): Size() = %d, want %d", file, got, want)
		}
		if !info.Mode().IsRegular() {
			t.Errorf("Stat(%q): Mode() = %v, want regular", file,
				info.Mode())
		}
		if info.ETag() == "" {
			t.Errorf("Stat(%q): ETag() is empty", file)
		}
		var de fs.DirEntry = info
		if got := de.Type(); got != 0 {
			t.Errorf("Stat(%q): Type() = %v, want regular", file, got)
		}
	})

	t.Run("StatDir", func(t *testing.T) {
		info, err := fsys.Stat(ctx, dir)
		if err != nil {
			t.Fatalf("Stat(%q) = %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", dir)
		}
		if !info.Mode().IsDir() {
			t.Errorf("Stat(%q): Mode() = %v, want directory", dir,
				info.Mode())
		}
	})

	t.Run("StatRoot", func(t *testing.T) {
		info, err := fsys.Stat(ctx, ".")
		if err != nil {
			t.Fatalf("Stat(.) = %v", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(.): IsDir() = false, want true")
		}
	})

	t.Run("StatMissing", func(t *testing.T) {
		_, err := fsys.Stat(ctx, dir+"/missing")
		if !errors.Is(err, cosfs.ErrNotExist) {
			t.Errorf("Stat(missing) = %v, want ErrNotExist", err)
		}
		var pe *cosfs.PathError
		if !errors.As(err, &pe) || pe.Op != "stat" {
			t.Errorf("Stat(missing) = %v, want *PathError for stat", err)
		}
		ok, err := fsys.Exists(ctx, dir+"/missing")
		if err != nil || ok {
			t.Errorf("Exists(missing) = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("StatInvalid", func(t *testing.T) {
		_, err := fsys.Stat(ctx, "../escape")
		if !errors.Is(err, cosfs.ErrInvalidPath) {
			t.Errorf("Stat(../escape) = %v, want ErrInvalidPath", err)
		}
	})
}
