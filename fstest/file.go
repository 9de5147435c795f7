package fstest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"lesiw.io/cosfs"
)

// testCreateAndRead tests basic file creation and reading.
func testCreateAndRead(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const name = "test_create.txt"
	testData := []byte("hello world")
	cleanup(ctx, t, fsys, name)

	w, err := fsys.Create(ctx, name)
	if err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
	n, err := w.Write(testData)
	if err != nil {
		t.Fatalf("Write(%q): %v", testData, err)
	}
	if n != len(testData) {
		t.Fatalf("Write(%q) = %d bytes, want %d", testData, n, len(testData))
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	r, err := fsys.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open(%q): %v", name, err)
	}
	defer r.Close()

	readData, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(): %v", err)
	}
	if !bytes.Equal(readData, testData) {
		t.Errorf("ReadAll() = %q, want %q", readData, testData)
	}
	if got, want := r.Size(), int64(len(testData)); got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
}

// testWriteFile tests that WriteFile creates and replaces objects.
func testWriteFile(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const name = "test_write.txt"
	cleanup(ctx, t, fsys, name)

	for _, data := range [][]byte{
		[]byte("test data for writefile"),
		[]byte("new"),
		{},
	} {
		if err := fsys.WriteFile(ctx, name, data); err != nil {
			t.Fatalf("WriteFile(%q): %v", name, err)
		}
		got, err := fsys.ReadFile(ctx, name)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadFile(%q) = %q, want %q", name, got, data)
		}
	}
}

// testVisibleOnClose tests that an object appears only when its Writer
// is closed.
func testVisibleOnClose(
	ctx context.Context, t *testing.T, fsys *cosfs.FS,
) {
	t.Helper()

	const name = "test_visible.txt"
	cleanup(ctx, t, fsys, name)

	w, err := fsys.Create(ctx, name)
	if err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
	if _, err = w.Write([]byte("pending")); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	ok, err := fsys.Exists(ctx, name)
	if err != nil || ok {
		t.Errorf("Exists(%q) before Close = %v, %v, want false, nil",
			name, ok, err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
	if ok, err = fsys.Exists(ctx, name); err != nil || !ok {
		t.Errorf("Exists(%q) after Close = %v, %v, want true, nil",
			name, ok, err)
	}
}

// testAppend tests that Append preserves existing content.
func testAppend(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const name = "test_append.txt"
	cleanup(ctx, t, fsys, name)

	for _, s := range []string{"first", " second", " third"} {
		w, err := fsys.Append(ctx, name)
		if err != nil {
			t.Fatalf("Append(%q): %v", name, err)
		}
		if _, err = w.Write([]byte(s)); err != nil {
			t.Fatalf("Write(%q): %v", s, err)
		}
		if err = w.Close(); err != nil {
			t.Fatalf("Close(): %v", err)
		}
	}

	got, err := fsys.ReadFile(ctx, name)
	if err != nil {
		t.Fatalf("ReadFile(%q): %v", name, err)
	}
	if want := "first second third"; string(got) != want {
		t.Errorf("ReadFile(%q) = %q, want %q", name, got, want)
	}
}

// testTouch tests that Touch creates and truncates files.
func testTouch(ctx context.Context, t *testing.T, fsys *cosfs.FS) {
	t.Helper()

	const name = "test_touch.txt"
	cleanup(ctx, t, fsys, name)

	for range 2 {
		if err := fsys.Touch(ctx, name); err != nil {
			t.Fatalf("Touch(%q): %v", name, err)
		}
		info, err := fsys.Stat(ctx, name)
		if err != nil {
			t.Fatalf("Stat(%q): %v", name, err)
		}
		if info.IsDir() || info.Size() != 0 {
			t.Errorf("Stat(%q) = %v, want empty file", name, info)
		}
		if err = fsys.WriteFile(ctx, name, []byte("x")); err != nil {
			t.Fatalf("WriteFile(%q): %v", name, err)
		}
	}
}

// testSeekAndReadAt tests random access on a Reader.
func testSeekAndReadAt(
	ctx context.Context, t *testing.T, fsys *cosfs.FS,
) {
	t.Helper()

	const name = "test_seek.txt"
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	cleanup(ctx, t, fsys, name)
	if err := fsys.WriteFile(ctx, name, data); err != nil {
		t.Fatalf("WriteFile(%q): %v", name, err)
	}

	rctx := cosfs.WithReadBlockSize(ctx, 8)
	r, err := fsys.Open(rctx, name)
	if err != nil {
		t.Fatalf("Open(%q): %v", name, err)
	}
	defer r.Close()

	for _, off := range []int64{30, 0, 9, 35} {
		if _, err = r.Seek(off, io.SeekStart); err != nil {
			t.Fatalf("Seek(%d): %v", off, err)
		}
		var got []byte
		if got, err = io.ReadAll(r); err != nil {
			t.Fatalf("ReadAll() at %d: %v", off, err)
		}
		if !bytes.Equal(got, data[off:]) {
			t.Errorf("ReadAll() at %d = %q, want %q", off, got, data[off:])
		}

		buf := make([]byte, 4)
		var n int
		n, err = r.ReadAt(buf, off)
		if err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("ReadAt(%d): %v", off, err)
		}
		want := data[off:min(off+4, int64(len(data)))]
		if !bytes.Equal(buf[:n], want) {
			t.Errorf("ReadAt(%d) = %q, want %q", off, buf[:n], want)
		}
	}

	if _, err = r.Seek(100, io.SeekStart); err != nil {
		t.Fatalf("Seek(100): %v", err)
	}
	n, err := r.Read(make([]byte, 1))
	if n != 0 || err != io.EOF {
		t.Errorf("Read() past end = %d, %v, want 0, EOF", n, err)
	}
}

// testMultipart tests objects that span several parts.
func testMultipart(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, partSize int64,
) {
	t.Helper()

	const name = "test_multipart.bin"
	cleanup(ctx, t, fsys, name)

	for _, size := range []int64{partSize, partSize + 1, 3*partSize - 1} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 7)
		}

		w, err := fsys.Create(ctx, name)
		if err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
		// Odd chunk sizes so writes straddle part boundaries.
		for chunk := data; len(chunk) > 0; {
			n := min(len(chunk), 1021)
			if _, err = w.Write(chunk[:n]); err != nil {
				t.Fatalf("Write(): %v", err)
			}
			chunk = chunk[n:]
		}
		if err = w.Close(); err != nil {
			t.Fatalf("Close() for %d bytes: %v", size, err)
		}

		got, err := fsys.ReadFile(ctx, name)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadFile(%q) of %d bytes: content mismatch",
				name, size)
		}
	}
}

// testAbort tests that an aborted upload leaves nothing behind.
func testAbort(
	ctx context.Context, t *testing.T, fsys *cosfs.FS, partSize int64,
) {
	t.Helper()

	const name = "test_abort.bin"
	cleanup(ctx, t, fsys, name)

	w, err := fsys.Create(ctx, name)
	if err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
	if _, err = w.Write(make([]byte, 2*partSize+1)); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	if err = w.Abort(); err != nil {
		t.Fatalf("Abort(): %v", err)
	}
	ok, err := fsys.Exists(ctx, name)
	if err != nil || ok {
		t.Errorf("Exists(%q) after Abort = %v, %v, want false, nil",
			name, ok, err)
	}
	if err = w.Close(); !errors.Is(err, cosfs.ErrUploadAborted) {
		t.Errorf("Close() after Abort = %v, want ErrUploadAborted", err)
	}
}
