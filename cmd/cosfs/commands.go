package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"lesiw.io/cosfs"
)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int // negative for no limit
	flags   func(*pflag.FlagSet)
	exec    func(ctx context.Context, a *app, flags *pflag.FlagSet) error
}

var commands = map[string]*command{
	"ls": {
		usage: "ls [-R] [-l] [dir]", help: "list a directory",
		minArgs: 0, maxArgs: 1,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolP("recursive", "R", false, "list every object below dir")
			fs.BoolP("long", "l", false, "show size and modification time")
		},
		exec: ls,
	},
	"stat": {
		usage: "stat name", help: "show metadata",
		minArgs: 1, maxArgs: 1, exec: stat,
	},
	"exists": {
		usage: "exists name", help: "exit 1 if name does not exist",
		minArgs: 1, maxArgs: 1, exec: exists,
	},
	"cat": {
		usage: "cat name...", help: "print files",
		minArgs: 1, maxArgs: -1, exec: cat,
	},
	"put": {
		usage: "put [-a] local|- name", help: "upload a file or stdin",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolP("append", "a", false, "append to an existing file")
		},
		exec: put,
	},
	"get": {
		usage: "get name local|-", help: "download a file",
		minArgs: 2, maxArgs: 2, exec: get,
	},
	"cp": {
		usage: "cp src dst", help: "copy a file or directory",
		minArgs: 2, maxArgs: 2, exec: cp,
	},
	"mv": {
		usage: "mv src dst", help: "move a file or directory",
		minArgs: 2, maxArgs: 2, exec: mv,
	},
	"rm": {
		usage: "rm [-r] name...", help: "remove files or directories",
		minArgs: 1, maxArgs: -1,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolP("recursive", "r", false, "remove directory contents")
		},
		exec: rm,
	},
	"mkdir": {
		usage: "mkdir [-p] dir...", help: "create directories",
		minArgs: 1, maxArgs: -1,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolP("parents", "p", false, "create missing parents")
		},
		exec: mkdir,
	},
	"touch": {
		usage: "touch name...", help: "create empty files",
		minArgs: 1, maxArgs: -1, exec: touch,
	},
	"glob": {
		usage: "glob pattern", help: "print matching paths",
		minArgs: 1, maxArgs: 1, exec: glob,
	},
	"abs": {
		usage: "abs name", help: "print the cos:// URL of name",
		minArgs: 1, maxArgs: 1, exec: abs,
	},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// run parses the command's flags and arguments and executes it.
func (c *command) run(ctx context.Context, a *app, args []string) error {
	name, _, _ := strings.Cut(c.usage, " ")
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.stderr)
	if c.flags != nil {
		c.flags(flags)
	}
	flags.Usage = func() {
		fmt.Fprintf(a.stderr, "usage: cosfs %s\n%s",
			c.usage, flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	n := flags.NArg()
	if n < c.minArgs || c.maxArgs >= 0 && n > c.maxArgs {
		return fmt.Errorf("usage: cosfs %s", c.usage)
	}
	return c.exec(ctx, a, flags)
}

func isSet(flags *pflag.FlagSet, name string) bool {
	v, err := flags.GetBool(name)
	return err == nil && v
}

func ls(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	dir := "."
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}
	recursive := isSet(flags, "recursive")
	entries, err := a.fsys.List(ctx, dir, recursive)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if recursive {
			name = e.Path()
		}
		if e.IsDir() && !strings.HasSuffix(name, "/") {
			name += "/"
		}
		if isSet(flags, "long") {
			fmt.Fprintf(a.stdout, "%12d  %-20s  %s\n",
				e.Size(), formatTime(e.ModTime()), name)
			continue
		}
		fmt.Fprintln(a.stdout, name)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func stat(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	e, err := a.fsys.Stat(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	kind := "file"
	if e.IsDir() {
		kind = "directory"
	}
	fmt.Fprintf(a.stdout, "path: %s\ntype: %s\nsize: %d\nmodified: %s\n",
		e.Path(), kind, e.Size(), formatTime(e.ModTime()))
	if e.ETag() != "" {
		fmt.Fprintf(a.stdout, "etag: %s\n", e.ETag())
	}
	return nil
}

func exists(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	ok, err := a.fsys.Exists(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	if !ok {
		return &exitError{code: 1}
	}
	return nil
}

func cat(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	for _, name := range flags.Args() {
		if err := copyOut(ctx, a.fsys, name, a.stdout); err != nil {
			return err
		}
	}
	return nil
}

func copyOut(
	ctx context.Context, fsys *cosfs.FS, name string, w io.Writer,
) error {
	r, err := fsys.Open(ctx, name)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}

func put(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	src := a.stdin
	if local := flags.Arg(0); local != "-" {
		f, err := os.Open(local)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	create := a.fsys.Create
	if isSet(flags, "append") {
		create = a.fsys.Append
	}
	w, err := create(ctx, flags.Arg(1))
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, src); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

func get(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	name, local := flags.Arg(0), flags.Arg(1)
	if local == "-" {
		return copyOut(ctx, a.fsys, name, a.stdout)
	}
	f, err := os.Create(local)
	if err != nil {
		return err
	}
	if err = copyOut(ctx, a.fsys, name, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cp(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	return a.fsys.Copy(ctx, flags.Arg(0), flags.Arg(1))
}

func mv(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	return a.fsys.Rename(ctx, flags.Arg(0), flags.Arg(1))
}

func rm(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	remove := a.fsys.Remove
	if isSet(flags, "recursive") {
		remove = a.fsys.RemoveAll
	}
	return each(ctx, flags.Args(), remove)
}

func mkdir(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	mk := a.fsys.Mkdir
	if isSet(flags, "parents") {
		mk = a.fsys.MkdirAll
	}
	return each(ctx, flags.Args(), mk)
}

func touch(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	return each(ctx, flags.Args(), a.fsys.Touch)
}

func each(
	ctx context.Context, names []string,
	fn func(context.Context, string) error,
) error {
	for _, name := range names {
		if err := fn(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func glob(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	matches, err := a.fsys.Glob(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintln(a.stdout, m)
	}
	return nil
}

func abs(ctx context.Context, a *app, flags *pflag.FlagSet) error {
	u, err := a.fsys.Abs(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, u)
	return nil
}
