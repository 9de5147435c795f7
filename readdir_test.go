package cosfs_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"testing"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/memstore"
)

func ExampleFS_ReadDir() {
	ctx := context.Background()
	fsys, err := cosfs.New(memstore.New("bucket"))
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range []string{"docs/a.md", "docs/b.md", "docs/img/x.png"} {
		if err := fsys.Touch(ctx, name); err != nil {
			log.Fatal(err)
		}
	}
	entries, err := fsys.ReadDir(ctx, "docs")
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Println(e.Name(), e.IsDir())
	}
	// Output:
	// a.md false
	// b.md false
	// img true
}

var tree = []string{
	"a/1.txt",
	"a/2.txt",
	"a/b/3.txt",
	"a/b/c/4.txt",
	"a/d/5.txt",
	"a-sibling.txt",
	"e.txt",
	"f/6.txt",
}

func writeTree(t *testing.T, fsys *cosfs.FS) {
	t.Helper()
	for _, name := range tree {
		writeFile(t, fsys, name, name)
	}
}

func TestListCompleteAcrossPageSizes(t *testing.T) {
	wantRecursive := []string{
		"a/1.txt", "a/2.txt", "a/b/3.txt", "a/b/c/4.txt", "a/d/5.txt",
	}
	wantDir := []string{"a/1.txt", "a/2.txt", "a/b/", "a/d/"}

	for _, size := range []int{1, 2, 3, 7, 1000} {
		t.Run(fmt.Sprintf("PageSize%d", size), func(t *testing.T) {
			store := memstore.New("bucket", memstore.WithPageSize(size))
			fsys, err := cosfs.New(store)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			writeTree(t, fsys)

			entries, err := fsys.List(t.Context(), "a", true)
			if err != nil {
				t.Fatalf("List(a, true) error = %v", err)
			}
			if got := paths(entries); !slices.Equal(got, wantRecursive) {
				t.Errorf("List(a, true) = %q, want %q", got, wantRecursive)
			}

			entries, err = fsys.ReadDir(t.Context(), "a")
			if err != nil {
				t.Fatalf("ReadDir(a) error = %v", err)
			}
			if got := paths(entries); !slices.Equal(got, wantDir) {
				t.Errorf("ReadDir(a) = %q, want %q", got, wantDir)
			}
		})
	}
}

func TestListPageSizeOption(t *testing.T) {
	fsys, store := newFS(t, cosfs.WithPageSize(2))
	writeTree(t, fsys)
	store.ResetCalls()

	entries, err := fsys.List(t.Context(), ".", true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got, want := len(entries), len(tree); got != want {
		t.Errorf("len(List()) = %d, want %d", got, want)
	}
	if got, want := store.Calls("ListObjects"), 4; got != want {
		t.Errorf("ListObjects calls = %d, want %d", got, want)
	}
}

func TestReadDirRoot(t *testing.T) {
	fsys, _ := newFS(t)

	entries, err := fsys.ReadDir(t.Context(), ".")
	if err != nil {
		t.Fatalf("ReadDir(.) on empty bucket error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ReadDir(.) = %q, want none", paths(entries))
	}

	writeTree(t, fsys)
	entries, err = fsys.ReadDir(t.Context(), "/")
	if err != nil {
		t.Fatalf("ReadDir(/) error = %v", err)
	}
	want := []string{"a-sibling.txt", "a/", "e.txt", "f/"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("ReadDir(/) = %q, want %q", got, want)
	}
}

func TestListKeyOrder(t *testing.T) {
	fsys, _ := newFS(t)
	writeFile(t, fsys, "a/c", "c")
	writeFile(t, fsys, "a-b", "b")
	writeFile(t, fsys, "a.d", "d")

	tests := []struct {
		recursive bool
		want      []string
	}{
		{true, []string{"a-b", "a.d", "a/c"}},
		{false, []string{"a-b", "a.d", "a/"}},
	}
	for _, tt := range tests {
		entries, err := fsys.List(t.Context(), ".", tt.recursive)
		if err != nil {
			t.Fatalf("List(., %v) error = %v", tt.recursive, err)
		}
		if got := paths(entries); !slices.Equal(got, tt.want) {
			t.Errorf("List(., %v) = %q, want %q",
				tt.recursive, got, tt.want)
		}
	}

	entries, err := fsys.Walk(t.Context(), ".", 0)
	if err != nil {
		t.Fatalf("Walk(., 0) error = %v", err)
	}
	want := []string{"a/", "a/c", "a-b", "a.d"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("Walk(., 0) = %q, want %q", got, want)
	}
}

func TestReadDirErrors(t *testing.T) {
	fsys, _ := newFS(t)
	writeTree(t, fsys)

	_, err := fsys.ReadDir(t.Context(), "e.txt")
	if !errors.Is(err, cosfs.ErrNotDir) {
		t.Errorf("ReadDir(file) error = %v, want ErrNotDir", err)
	}
	_, err = fsys.ReadDir(t.Context(), "missing")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("ReadDir(missing) error = %v, want ErrNotExist", err)
	}
	_, err = fsys.ReadDir(t.Context(), "e.txt/")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("ReadDir(file/) error = %v, want ErrNotExist", err)
	}
}

func TestListFile(t *testing.T) {
	fsys, _ := newFS(t)
	writeTree(t, fsys)

	entries, err := fsys.List(t.Context(), "e.txt", false)
	if err != nil {
		t.Fatalf("List(file) error = %v", err)
	}
	want := []string{"e.txt"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("List(file) = %q, want %q", got, want)
	}

	_, err = fsys.List(t.Context(), "missing", true)
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("List(missing) error = %v, want ErrNotExist", err)
	}
}

func TestListMarkers(t *testing.T) {
	fsys, _ := newFS(t)
	ctx := t.Context()
	if err := fsys.MkdirAll(ctx, "m/empty"); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := fsys.Mkdir(ctx, "m/full"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	writeFile(t, fsys, "m/full/x.txt", "x")

	entries, err := fsys.List(ctx, "m", true)
	if err != nil {
		t.Fatalf("List(m, true) error = %v", err)
	}
	want := []string{"m/empty/", "m/full/", "m/full/x.txt"}
	if got := paths(entries); !slices.Equal(got, want) {
		t.Errorf("List(m, true) = %q, want %q", got, want)
	}

	entries, err = fsys.ReadDir(ctx, "m/empty")
	if err != nil {
		t.Fatalf("ReadDir(m/empty) error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ReadDir(m/empty) = %q, want none", paths(entries))
	}
}

func TestWalk(t *testing.T) {
	fsys, _ := newFS(t)
	writeTree(t, fsys)

	tests := []struct {
		root  string
		depth int
		want  []string
	}{{
		root:  ".",
		depth: 1,
		want:  []string{"a/", "a-sibling.txt", "e.txt", "f/"},
	}, {
		root:  "a",
		depth: 0,
		want: []string{
			"a/1.txt", "a/2.txt", "a/b/", "a/b/3.txt", "a/b/c/",
			"a/b/c/4.txt", "a/d/", "a/d/5.txt",
		},
	}, {
		root:  "a",
		depth: 2,
		want: []string{
			"a/1.txt", "a/2.txt", "a/b/", "a/b/3.txt", "a/b/c/",
			"a/d/", "a/d/5.txt",
		},
	}, {
		root:  ".",
		depth: 0,
		want: []string{
			"a/", "a/1.txt", "a/2.txt", "a/b/", "a/b/3.txt", "a/b/c/",
			"a/b/c/4.txt", "a/d/", "a/d/5.txt", "a-sibling.txt",
			"e.txt", "f/", "f/6.txt",
		},
	}}
	for _, tt := range tests {
		entries, err := fsys.Walk(t.Context(), tt.root, tt.depth)
		if err != nil {
			t.Fatalf("Walk(%q, %d) error = %v", tt.root, tt.depth, err)
		}
		if got := paths(entries); !slices.Equal(got, tt.want) {
			t.Errorf("Walk(%q, %d) = %q, want %q",
				tt.root, tt.depth, got, tt.want)
		}
	}

	_, err := fsys.Walk(t.Context(), "e.txt", 0)
	if !errors.Is(err, cosfs.ErrNotDir) {
		t.Errorf("Walk(file) error = %v, want ErrNotDir", err)
	}
	_, err = fsys.Walk(t.Context(), "missing", 0)
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("Walk(missing) error = %v, want ErrNotExist", err)
	}
}
