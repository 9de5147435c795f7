package fstest

import (
	"context"
	"io"
	"testing"

	"lesiw.io/cosfs"
)

// testReadOnly runs tests appropriate for buckets with pre-populated
// files specified in expected. It validates that all expected files
// exist and are readable, that repeated reads agree, and that Stat
// matches the content read.
func testReadOnly(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, expected []string,
) {
	t.Helper()

	if len(expected) == 0 {
		t.Fatal("testReadOnly requires expected files")
	}

	t.Run("ExpectedFiles", func(t *testing.T) {
		for _, path := range expected {
			t.Run(path, func(t *testing.T) {
				data1 := readAll(ctx, t, fsys, path)
				data2 := readAll(ctx, t, fsys, path)
				if string(data1) != string(data2) {
					msg := "Open+ReadAll(%q): inconsistent data:\n" +
						"first:  %q\nsecond: %q"
					t.Errorf(msg, path, data1, data2)
				}

				info, err := fsys.Stat(ctx, path)
				if err != nil {
					t.Fatalf("Stat(%q): %v", path, err)
				}
				if size := int64(len(data1)); info.Size() != size {
					t.Errorf(
						"Stat(%q).Size() = %d, but Read got %d bytes",
						path, info.Size(), size,
					)
				}
			})
		}
	})
}

func readAll(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, path string,
) []byte {
	t.Helper()
	r, err := fsys.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", path, err)
	}
	return data
}
