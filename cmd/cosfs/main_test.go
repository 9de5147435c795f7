package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/config"
	"lesiw.io/cosfs/memstore"
	"lesiw.io/cosfs/objstore"
)

type testApp struct {
	store  *memstore.Store
	stdin  string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv("COS_ENDPOINT", "localhost:9000")
	t.Setenv("COS_BUCKET", "bucket")
	t.Setenv("COS_ROOT", "")
	t.Setenv("COS_SECRET_ID", "")
	t.Setenv("COS_SECRET_KEY", "")
	return &testApp{
		store: memstore.New("bucket", memstore.WithMinPartSize(1)),
	}
}

// run runs the command and returns what it wrote to stdout.
func (ta *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ta.stdout.Reset()
	ta.stderr.Reset()
	a := &app{
		stdin:  strings.NewReader(ta.stdin),
		stdout: &ta.stdout,
		stderr: &ta.stderr,
		connect: func(cfg config.Config) (objstore.Client, error) {
			if cfg.Bucket != ta.store.Bucket() {
				t.Fatalf("connect bucket = %q, want %q",
					cfg.Bucket, ta.store.Bucket())
			}
			return ta.store, nil
		},
	}
	err := a.run(t.Context(), args)
	return ta.stdout.String(), err
}

// must runs the command and fails the test if it fails.
func (ta *testApp) must(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ta.run(t, args...)
	if err != nil {
		t.Fatalf("cosfs %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestPutCat(t *testing.T) {
	ta := newTestApp(t)
	ta.stdin = "hello"
	ta.must(t, "put", "-", "dir/a.txt")
	ta.stdin = ", world"
	ta.must(t, "put", "-a", "-", "dir/a.txt")

	const want = "hello, world"
	if got := ta.must(t, "cat", "dir/a.txt"); got != want {
		t.Errorf("cat = %q, want %q", got, want)
	}
	if got := ta.must(t, "get", "dir/a.txt", "-"); got != want {
		t.Errorf("get - = %q, want %q", got, want)
	}
}

func TestPutGetLocal(t *testing.T) {
	ta := newTestApp(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("local data"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ta.must(t, "put", src, "remote.txt")
	ta.must(t, "get", "remote.txt", dst)

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "local data" {
		t.Errorf("get %s = %q, want %q", dst, got, "local data")
	}
	missing := filepath.Join(dir, "missing")
	if _, err := ta.run(t, "put", missing, "x"); err == nil {
		t.Error("put missing error = nil, want error")
	}
}

func TestLs(t *testing.T) {
	ta := newTestApp(t)
	ta.must(t, "touch", "a/1.txt", "a/2.txt", "b.txt")
	ta.must(t, "mkdir", "d")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"ls"}, "a/\nb.txt\nd/\n"},
		{[]string{"ls", "a"}, "1.txt\n2.txt\n"},
		{[]string{"ls", "-R"}, "a/1.txt\na/2.txt\nb.txt\nd/\n"},
		{[]string{"ls", "b.txt"}, "b.txt\n"},
	}
	for _, tt := range tests {
		if got := ta.must(t, tt.args...); got != tt.want {
			t.Errorf("cosfs %s = %q, want %q",
				strings.Join(tt.args, " "), got, tt.want)
		}
	}

	out := ta.must(t, "ls", "-l", "a")
	if !strings.Contains(out, "0  ") || !strings.HasSuffix(out, "2.txt\n") {
		t.Errorf("ls -l a = %q, want sizes and names", out)
	}
	_, err := ta.run(t, "ls", "missing")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("ls missing error = %v, want ErrNotExist", err)
	}
}

func TestStat(t *testing.T) {
	ta := newTestApp(t)
	ta.stdin = "12345"
	ta.must(t, "put", "-", "f.txt")

	out := ta.must(t, "stat", "f.txt")
	for _, want := range []string{
		"path: f.txt\n", "type: file\n", "size: 5\n", "etag: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stat f.txt = %q, want %q", out, want)
		}
	}
	out = ta.must(t, "stat", ".")
	if !strings.Contains(out, "type: directory\n") {
		t.Errorf("stat . = %q, want directory", out)
	}
}

func TestExists(t *testing.T) {
	ta := newTestApp(t)
	ta.must(t, "touch", "here.txt")
	ta.must(t, "exists", "here.txt")

	_, err := ta.run(t, "exists", "gone.txt")
	var ee *exitError
	if !errors.As(err, &ee) || ee.ExitCode() != 1 {
		t.Errorf("exists gone.txt error = %v, want exit 1", err)
	}
}

func TestCpMvRm(t *testing.T) {
	ta := newTestApp(t)
	ta.stdin = "data"
	ta.must(t, "put", "-", "src/f.txt")
	ta.must(t, "cp", "src", "copy")
	ta.must(t, "mv", "copy/f.txt", "moved.txt")

	if got := ta.must(t, "ls", "-R"); got != "moved.txt\nsrc/f.txt\n" {
		t.Errorf("ls -R = %q, want moved.txt and src/f.txt", got)
	}
	if _, err := ta.run(t, "rm", "src"); !errors.Is(err, cosfs.ErrIsDir) {
		t.Errorf("rm src error = %v, want ErrIsDir", err)
	}
	ta.must(t, "rm", "-r", "src")
	ta.must(t, "rm", "moved.txt")
	if got := ta.must(t, "ls"); got != "" {
		t.Errorf("ls = %q, want empty", got)
	}
}

func TestMkdirGlobAbs(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.run(t, "mkdir", "x/y")
	if !errors.Is(err, cosfs.ErrNotExist) {
		t.Errorf("mkdir x/y error = %v, want ErrNotExist", err)
	}
	ta.must(t, "mkdir", "-p", "x/y")
	ta.must(t, "touch", "x/y/a.go", "x/b.go", "c.txt")

	got := ta.must(t, "glob", "**/*.go")
	if want := "x/b.go\nx/y/a.go\n"; got != want {
		t.Errorf("glob **/*.go = %q, want %q", got, want)
	}
	got = ta.must(t, "--root", "x", "abs", "y/a.go")
	if want := "cos://bucket/x/y/a.go\n"; got != want {
		t.Errorf("abs y/a.go = %q, want %q", got, want)
	}
}

func TestStats(t *testing.T) {
	ta := newTestApp(t)
	ta.stdin = "abc"
	ta.must(t, "--stats", "put", "-", "f.txt")

	stats := ta.stderr.String()
	for _, want := range []string{
		"cosfs_store_ops_total{op=PutObject,result=ok} 1\n",
		"cosfs_store_bytes_total{op=PutObject} 3\n",
		"cosfs_store_op_duration_seconds{op=PutObject} count=1",
	} {
		if !strings.Contains(stats, want) {
			t.Errorf("--stats output = %q, want %q", stats, want)
		}
	}
}

func TestVerbose(t *testing.T) {
	ta := newTestApp(t)
	ta.stdin = "x"
	ta.must(t, "-v", "put", "-", "f.txt")
	log := ta.stderr.String()
	for _, want := range []string{"msg=connected", `msg="put object"`} {
		if !strings.Contains(log, want) {
			t.Errorf("-v log = %q, want %q", log, want)
		}
	}

	ta.must(t, "put", "-", "g.txt")
	if log := ta.stderr.String(); log != "" {
		t.Errorf("log = %q, want empty without -v", log)
	}
}

func TestUsageErrors(t *testing.T) {
	ta := newTestApp(t)
	tests := []struct {
		name string
		args []string
	}{
		{"NoCommand", nil},
		{"Unknown", []string{"frob"}},
		{"MissingArgs", []string{"cp", "a"}},
		{"ExtraArgs", []string{"stat", "a", "b"}},
		{"BadFlag", []string{"ls", "--nope"}},
		{"BadGlobalFlag", []string{"--nope", "ls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ta.run(t, tt.args...); err == nil {
				t.Errorf("cosfs %v error = nil, want error", tt.args)
			}
		})
	}

	if _, err := ta.run(t, "--help"); err != nil {
		t.Errorf("cosfs --help error = %v", err)
	}
	if !strings.Contains(ta.stderr.String(), "  glob") {
		t.Errorf("cosfs --help = %q, want command list", ta.stderr.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	ta := newTestApp(t)
	t.Setenv("COS_BUCKET", "")
	_, err := ta.run(t, "ls")
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("ls error = %v, want ErrInvalid", err)
	}
}
