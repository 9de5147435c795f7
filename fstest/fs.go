// Package fstest implements a conformance suite for cosfs filesystems.
//
// The suite runs against a *cosfs.FS backed by any objstore.Client, so
// the same checks cover the in-memory store used in unit tests and a real
// S3-compatible endpoint in integration tests.
package fstest

import (
	"context"
	"fmt"
	"testing"

	"lesiw.io/cosfs"
)

// TestFSOption configures TestFS behavior via functional options.
type TestFSOption func(*testFSOpts)

type testFSOpts struct {
	expectedFiles []string
	partSize      int64
}

// WithFiles specifies files that must exist in the filesystem.
// When provided, TestFS runs in read-only mode and validates the
// expected files exist and are readable, then skips tests that
// require write operations.
//
// This enables testing buckets that are populated externally.
func WithFiles(files ...string) TestFSOption {
	return func(opts *testFSOpts) {
		opts.expectedFiles = files
	}
}

// WithPartSize tells TestFS the part size the filesystem was configured
// with, so that multipart uploads can be exercised with small objects.
// The default is [cosfs.DefaultPartSize].
func WithPartSize(n int64) TestFSOption {
	return func(opts *testFSOpts) {
		opts.partSize = n
	}
}

// TestFS runs a comprehensive compliance test suite on a filesystem.
//
// By default, the filesystem must be writable. TestFS creates, modifies
// and deletes objects under a handful of top-level directories and
// removes them when each test completes, so it can share a bucket with
// other data.
//
// Use WithFiles for read-only buckets with pre-populated files.
//
// Typical usage:
//
//	func TestMyStore(t *testing.T) {
//	    fsys, err := cosfs.New(newClient(t))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    fstest.TestFS(t.Context(), t, fsys)
//	}
func TestFS(
	ctx context.Context, t *testing.T, fsys *cosfs.FS,
	opts ...TestFSOption,
) {
	t.Helper()

	o := testFSOpts{partSize: cosfs.DefaultPartSize}
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.expectedFiles) > 0 {
		testReadOnly(ctx, t, fsys, o.expectedFiles)
		return
	}

	t.Run("File", func(t *testing.T) {
		t.Run("CreateAndRead", func(t *testing.T) {
			testCreateAndRead(ctx, t, fsys)
		})

		t.Run("WriteFile", func(t *testing.T) {
			testWriteFile(ctx, t, fsys)
		})

		t.Run("VisibleOnClose", func(t *testing.T) {
			testVisibleOnClose(ctx, t, fsys)
		})

		t.Run("Append", func(t *testing.T) {
			testAppend(ctx, t, fsys)
		})

		t.Run("Touch", func(t *testing.T) {
			testTouch(ctx, t, fsys)
		})

		t.Run("SeekAndReadAt", func(t *testing.T) {
			testSeekAndReadAt(ctx, t, fsys)
		})

		t.Run("Multipart", func(t *testing.T) {
			testMultipart(ctx, t, fsys, o.partSize)
		})

		t.Run("Abort", func(t *testing.T) {
			testAbort(ctx, t, fsys, o.partSize)
		})
	})

	t.Run("Dir", func(t *testing.T) {
		t.Run("Implicit", func(t *testing.T) {
			testImplicitDirs(ctx, t, fsys)
		})

		t.Run("Mkdir", func(t *testing.T) {
			testMkdir(ctx, t, fsys)
		})

		t.Run("MkdirAll", func(t *testing.T) {
			testMkdirAll(ctx, t, fsys)
		})

		t.Run("FileAndDir", func(t *testing.T) {
			testFileAndDir(ctx, t, fsys)
		})
	})

	t.Run("ReadDir", func(t *testing.T) {
		testReadDir(ctx, t, fsys)
	})

	t.Run("List", func(t *testing.T) {
		testList(ctx, t, fsys)
	})

	t.Run("Walk", func(t *testing.T) {
		t.Run("Basic", func(t *testing.T) {
			testWalk(ctx, t, fsys)
		})

		for _, depth := range []int{0, 1, 2, 5} {
			t.Run(fmt.Sprintf("Depth%d", depth), func(t *testing.T) {
				testWalkDepth(ctx, t, fsys, depth)
			})
		}
	})

	t.Run("Stat", func(t *testing.T) {
		testStat(ctx, t, fsys)
	})

	t.Run("Remove", func(t *testing.T) {
		t.Run("Basic", func(t *testing.T) {
			testRemove(ctx, t, fsys)
		})

		t.Run("All", func(t *testing.T) {
			testRemoveAll(ctx, t, fsys)
		})
	})

	t.Run("Copy", func(t *testing.T) {
		testCopy(ctx, t, fsys)
	})

	t.Run("Rename", func(t *testing.T) {
		testRename(ctx, t, fsys)
	})

	t.Run("Glob", func(t *testing.T) {
		testGlob(ctx, t, fsys)
	})

	t.Run("WorkDir", func(t *testing.T) {
		testWorkDir(ctx, t, fsys)
	})

	t.Run("Abs", func(t *testing.T) {
		testAbs(ctx, t, fsys)
	})

	t.Run("Stress", func(t *testing.T) {
		t.Run("MixedOperations", func(t *testing.T) {
			testMixedOperations(ctx, t, fsys)
		})

		t.Run("ConcurrentReads", func(t *testing.T) {
			testConcurrentReads(ctx, t, fsys)
		})
	})
}
