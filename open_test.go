package cosfs_test

import (
	"errors"
	"io"
	"testing"

	"lesiw.io/cosfs"
)

func TestOpenFile(t *testing.T) {
	fsys, _ := newFS(t)
	ctx := t.Context()

	for _, mode := range []string{"w", "wb"} {
		f, err := fsys.OpenFile(ctx, "f", mode)
		if err != nil {
			t.Fatalf("OpenFile(%q) error = %v", mode, err)
		}
		w, ok := f.(*cosfs.Writer)
		if !ok {
			t.Fatalf("OpenFile(%q) = %T, want *cosfs.Writer", mode, f)
		}
		if _, err := w.Write([]byte("ab")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
	for _, mode := range []string{"a", "ab"} {
		f, err := fsys.OpenFile(ctx, "f", mode)
		if err != nil {
			t.Fatalf("OpenFile(%q) error = %v", mode, err)
		}
		if _, err := f.(io.Writer).Write([]byte("c")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
	for _, mode := range []string{"r", "rb"} {
		f, err := fsys.OpenFile(ctx, "f", mode)
		if err != nil {
			t.Fatalf("OpenFile(%q) error = %v", mode, err)
		}
		data, err := io.ReadAll(f.(io.Reader))
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if got, want := string(data), "abcc"; got != want {
			t.Errorf("OpenFile(%q) content = %q, want %q", mode, got, want)
		}
		if got, want := f.Name(), "f"; got != want {
			t.Errorf("Name() = %q, want %q", got, want)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}

func TestOpenFileErrors(t *testing.T) {
	fsys, _ := newFS(t)
	ctx := t.Context()

	tests := []struct {
		name string
		mode string
		want error
	}{
		{"f", "x", cosfs.ErrInvalid},
		{"f", "r+", cosfs.ErrInvalid},
		{"f", "", cosfs.ErrInvalid},
		{"missing", "r", cosfs.ErrNotExist},
		{"dir/", "w", cosfs.ErrIsDir},
	}
	for _, tt := range tests {
		f, err := fsys.OpenFile(ctx, tt.name, tt.mode)
		if !errors.Is(err, tt.want) {
			t.Errorf("OpenFile(%q, %q) error = %v, want %v",
				tt.name, tt.mode, err, tt.want)
		}
		if f != nil {
			t.Errorf("OpenFile(%q, %q) = %v, want nil", tt.name, tt.mode, f)
		}
	}
}
