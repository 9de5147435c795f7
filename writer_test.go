package cosfs_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/memstore"
	"lesiw.io/cosfs/objstore"
)

func unavailable(op, k string) error {
	return &objstore.ResponseError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       objstore.CodeSlowDown,
		Key:        k,
	}
}

// failNth returns a fault that fails the nth request for op.
func failNth(op string, n int32) memstore.FaultFunc {
	var count atomic.Int32
	return func(o, k string) error {
		if o == op && count.Add(1) == n {
			return unavailable(o, k)
		}
		return nil
	}
}

func pendingUploads(t *testing.T, store *memstore.Store) int {
	t.Helper()
	uploads, err := store.ListMultipartUploads(t.Context(), "")
	if err != nil {
		t.Fatalf("ListMultipartUploads() error = %v", err)
	}
	return len(uploads)
}

func TestWriteSinglePut(t *testing.T) {
	fsys, store := newFS(t)
	ctx := t.Context()

	w, err := fsys.Create(ctx, "small.txt")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, s := range []string{"hello", ", ", "world"} {
		if _, err := w.Write([]byte(s)); err != nil {
			t.Fatalf("Write(%q) error = %v", s, err)
		}
	}
	if ok, _ := fsys.Exists(ctx, "small.txt"); ok {
		t.Error("Exists() before Close = true, want false")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, want := readFile(t, fsys, "small.txt"), "hello, world"
	if got != want {
		t.Errorf("ReadFile() = %q, want %q", got, want)
	}
	if got := store.Calls(objstore.OpPutObject); got != 1 {
		t.Errorf("PutObject calls = %d, want 1", got)
	}
	if got := store.Calls(objstore.OpInitiateMultipart); got != 0 {
		t.Errorf("InitiateMultipart calls = %d, want 0", got)
	}
	if got, want := w.Written(), int64(12); got != want {
		t.Errorf("Written() = %d, want %d", got, want)
	}
}

func TestWriteEmpty(t *testing.T) {
	fsys, _ := newFS(t)
	w, err := fsys.Create(t.Context(), "empty")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	e, err := fsys.Stat(t.Context(), "empty")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if e.IsDir() || e.Size() != 0 {
		t.Errorf("Stat() = %v, want empty file", e)
	}
}

func TestWriteMultipart(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		puts  int
		parts int
	}{
		{"ExactlyOnePart", 10, 1, 0},
		{"OneByteOver", 11, 0, 2},
		{"SeveralParts", 35, 0, 4},
		{"EvenParts", 40, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys, store := newFS(t, cosfs.WithPartSize(10))
			data := pattern(tt.size)

			if err := fsys.WriteFile(t.Context(), "f", data); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if got := readFile(t, fsys, "f"); got != string(data) {
				t.Errorf("ReadFile() = %q, want %q", got, data)
			}
			if got := store.Calls(objstore.OpPutObject); got != tt.puts {
				t.Errorf("PutObject calls = %d, want %d", got, tt.puts)
			}
			if got := store.Calls(objstore.OpUploadPart); got != tt.parts {
				t.Errorf("UploadPart calls = %d, want %d", got, tt.parts)
			}
			if got := pendingUploads(t, store); got != 0 {
				t.Errorf("pending uploads = %d, want 0", got)
			}
		})
	}
}

func TestWriteManySmallWrites(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPartSize(8))
	w, err := fsys.Create(t.Context(), "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	data := pattern(50)
	for i := range data {
		if _, err := w.Write(data[i : i+1]); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := readFile(t, fsys, "f"); got != string(data) {
		t.Errorf("ReadFile() = %q, want %q", got, data)
	}
	if got, want := store.Calls(objstore.OpUploadPart), 7; got != want {
		t.Errorf("UploadPart calls = %d, want %d", got, want)
	}
}

func TestWritePartFailure(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPartSize(10))
	ctx := t.Context()
	writeFile(t, fsys, "f", "previous")
	store.SetFault(failNth(objstore.OpUploadPart, 2))

	w, err := fsys.Create(ctx, "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = w.Write(pattern(35))
	if !errors.Is(err, cosfs.ErrTransient) {
		t.Errorf("Write() error = %v, want ErrTransient", err)
	}
	store.SetFault(nil)

	if got := store.Calls(objstore.OpAbortMultipart); got != 1 {
		t.Errorf("AbortMultipart calls = %d, want 1", got)
	}
	if got := pendingUploads(t, store); got != 0 {
		t.Errorf("pending uploads = %d, want 0", got)
	}
	if got, want := readFile(t, fsys, "f"), "previous"; got != want {
		t.Errorf("ReadFile() = %q, want %q", got, want)
	}

	_, err = w.Write([]byte("x"))
	if !errors.Is(err, cosfs.ErrUploadAborted) {
		t.Errorf("Write() after failure error = %v, want ErrUploadAborted",
			err)
	}
	if err := w.Close(); !errors.Is(err, cosfs.ErrUploadAborted) {
		t.Errorf("Close() after failure error = %v, want ErrUploadAborted",
			err)
	}
	if err := w.Abort(); err != nil {
		t.Errorf("Abort() after failure error = %v", err)
	}
}

func TestWriteCompleteFailure(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPartSize(10))
	ctx := t.Context()
	store.SetFault(failNth(objstore.OpCompleteMultipart, 1))

	err := fsys.WriteFile(ctx, "f", pattern(25))
	if !errors.Is(err, cosfs.ErrTransient) {
		t.Errorf("WriteFile() error = %v, want ErrTransient", err)
	}
	if ok, err := fsys.Exists(ctx, "f"); ok || err != nil {
		t.Errorf("Exists() = %v, %v, want false, nil", ok, err)
	}
	if got := pendingUploads(t, store); got != 0 {
		t.Errorf("pending uploads = %d, want 0", got)
	}
}

func TestWriteAbortFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	fsys, store := newFS(t,
		cosfs.WithPartSize(10), cosfs.WithLogger(logger))
	part := failNth(objstore.OpUploadPart, 2)
	store.SetFault(func(op, k string) error {
		if op == objstore.OpAbortMultipart {
			return &objstore.ResponseError{
				StatusCode: http.StatusInternalServerError,
				Code:       objstore.CodeInternalError,
				Key:        k,
			}
		}
		return part(op, k)
	})

	w, err := fsys.Create(t.Context(), "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = w.Write(pattern(35))
	store.SetFault(nil)

	var re *objstore.ResponseError
	if !errors.As(err, &re) || re.Code != objstore.CodeSlowDown {
		t.Errorf("Write() error = %v, want part failure", err)
	}
	if !strings.Contains(err.Error(), objstore.CodeInternalError) {
		t.Errorf("Write() error = %v, want abort failure joined", err)
	}
	if !strings.Contains(logs.String(), "failed to abort") {
		t.Errorf("log = %q, want abort warning", logs.String())
	}
	if got := pendingUploads(t, store); got != 1 {
		t.Errorf("pending uploads = %d, want 1", got)
	}
}

func TestWriteMaxParts(t *testing.T) {
	fsys, store := newFS(t,
		cosfs.WithPartSize(4), cosfs.WithMaxParts(2))

	err := fsys.WriteFile(t.Context(), "f", pattern(13))
	if !errors.Is(err, cosfs.ErrInvalid) {
		t.Errorf("WriteFile() error = %v, want ErrInvalid", err)
	}
	if got := pendingUploads(t, store); got != 0 {
		t.Errorf("pending uploads = %d, want 0", got)
	}
	if ok, _ := fsys.Exists(t.Context(), "f"); ok {
		t.Error("Exists() = true, want false")
	}

	if err := fsys.WriteFile(t.Context(), "g", pattern(8)); err != nil {
		t.Errorf("WriteFile(8 bytes) error = %v", err)
	}
}

func TestWriteCanceled(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPartSize(10))
	ctx, cancel := context.WithCancel(t.Context())

	w, err := fsys.Create(ctx, "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := w.Write(pattern(15)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := pendingUploads(t, store); got != 1 {
		t.Fatalf("pending uploads = %d, want 1", got)
	}

	cancel()
	if err := w.Close(); !errors.Is(err, context.Canceled) {
		t.Errorf("Close() error = %v, want context.Canceled", err)
	}
	if got := pendingUploads(t, store); got != 0 {
		t.Errorf("pending uploads = %d, want 0", got)
	}
}

func TestWriterAbort(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPartSize(10))
	ctx := t.Context()

	w, err := fsys.Create(ctx, "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := w.Write(pattern(25)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if got := pendingUploads(t, store); got != 0 {
		t.Errorf("pending uploads = %d, want 0", got)
	}
	if ok, _ := fsys.Exists(ctx, "f"); ok {
		t.Error("Exists() after Abort = true, want false")
	}
	if err := w.Abort(); err != nil {
		t.Errorf("second Abort() error = %v", err)
	}
}

func TestWriterLifecycle(t *testing.T) {
	fsys, _ := newFS(t)
	ctx := t.Context()

	if _, err := fsys.Create(ctx, "dir/"); !errors.Is(err, cosfs.ErrIsDir) {
		t.Errorf("Create(dir/) error = %v, want ErrIsDir", err)
	}

	w, err := fsys.Create(ctx, "f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, cosfs.ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}
	if err := w.Abort(); !errors.Is(err, cosfs.ErrClosed) {
		t.Errorf("Abort() after Close error = %v, want ErrClosed", err)
	}
}
