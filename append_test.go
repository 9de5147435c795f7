package cosfs_test

import (
	"errors"
	"testing"

	"lesiw.io/cosfs"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name     string
		partSize int64
		existing string
		appended string
	}{
		{"Small", cosfs.DefaultPartSize, "hello", " world"},
		{"Multipart", 4, "0123456789", "abc"},
		{"EmptyAppend", 4, "0123456789", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys, _ := newFS(t, cosfs.WithPartSize(tt.partSize))
			writeFile(t, fsys, "f", tt.existing)

			w, err := fsys.Append(t.Context(), "f")
			if err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			if _, err := w.Write([]byte(tt.appended)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if got := readFile(t, fsys, "f"); got != tt.existing {
				t.Errorf("ReadFile() before Close = %q, want %q",
					got, tt.existing)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			want := tt.existing + tt.appended
			if got := readFile(t, fsys, "f"); got != want {
				t.Errorf("ReadFile() = %q, want %q", got, want)
			}
		})
	}
}

func TestAppendMissing(t *testing.T) {
	fsys, _ := newFS(t)
	w, err := fsys.Append(t.Context(), "new")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := w.Write([]byte("first")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got, want := readFile(t, fsys, "new"), "first"; got != want {
		t.Errorf("ReadFile() = %q, want %q", got, want)
	}
}

func TestAppendDir(t *testing.T) {
	fsys, _ := newFS(t)
	writeFile(t, fsys, "dir/f", "x")

	for _, name := range []string{"dir", "dir/"} {
		_, err := fsys.Append(t.Context(), name)
		if !errors.Is(err, cosfs.ErrIsDir) {
			t.Errorf("Append(%q) error = %v, want ErrIsDir", name, err)
		}
	}
}

func TestTouch(t *testing.T) {
	fsys, _ := newFS(t)
	ctx := t.Context()
	writeFile(t, fsys, "full", "content")

	for _, name := range []string{"new", "full"} {
		if err := fsys.Touch(ctx, name); err != nil {
			t.Fatalf("Touch(%q) error = %v", name, err)
		}
		e, err := fsys.Stat(ctx, name)
		if err != nil {
			t.Fatalf("Stat(%q) error = %v", name, err)
		}
		if e.IsDir() || e.Size() != 0 {
			t.Errorf("Stat(%q) = %v, want empty file", name, e)
		}
	}
	if err := fsys.Touch(ctx, "d/"); !errors.Is(err, cosfs.ErrIsDir) {
		t.Errorf("Touch(d/) error = %v, want ErrIsDir", err)
	}
}
