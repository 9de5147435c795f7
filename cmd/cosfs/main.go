// Command cosfs manipulates a COS bucket as a filesystem.
//
// Usage:
//
//	cosfs [flags] command [args...]
//
// The bucket and credentials come from the configuration file named by
// --config or COSFS_CONFIG, overridden by the COS_* environment
// variables. Run cosfs --help for the list of commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/config"
	"lesiw.io/cosfs/instrument"
	"lesiw.io/cosfs/miniostore"
	"lesiw.io/cosfs/objstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := &app{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		connect: connectMinIO,
	}
	err := a.run(ctx, os.Args[1:])
	stop()
	if err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "cosfs: %v\n", err)
		os.Exit(1)
	}
}

// An app is one invocation of the command.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	connect func(config.Config) (objstore.Client, error)

	fsys   *cosfs.FS
	logger *slog.Logger
}

func connectMinIO(cfg config.Config) (objstore.Client, error) {
	return miniostore.New(cfg.StoreOptions())
}

// exitError ends the command with a status and no message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

func (a *app) run(ctx context.Context, args []string) error {
	var (
		configPath string
		verbose    bool
		stats      bool
		root       string
	)
	flags := pflag.NewFlagSet("cosfs", pflag.ContinueOnError)
	flags.SetOutput(a.stderr)
	flags.SetInterspersed(false)
	flags.StringVarP(&configPath, "config", "c", "",
		"path to YAML config file (default $"+config.EnvConfig+")")
	flags.StringVar(&root, "root", "", "key prefix to use as the root")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log store requests")
	flags.BoolVar(&stats, "stats", false,
		"print store request counters on exit")
	flags.Usage = func() { a.usage(flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
		a.usage(flags)
		return &exitError{code: 2}
	}
	name, cmdArgs := flags.Arg(0), flags.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr,
		&slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if flags.Changed("root") {
		cfg.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := instrument.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	client, err := a.connect(cfg)
	if err != nil {
		return err
	}
	opts := append(cfg.FSOptions(), cosfs.WithLogger(a.logger))
	a.fsys, err = cosfs.New(
		instrument.Wrap(client, instrument.WithMetrics(metrics)), opts...,
	)
	if err != nil {
		return err
	}
	a.logger.Debug("connected", "bucket", cfg.Bucket,
		"endpoint", cfg.Endpoint, "root", cfg.Root)

	err = cmd.run(ctx, a, cmdArgs)
	if stats {
		if serr := printStats(a.stderr, reg); serr != nil {
			err = errors.Join(err, serr)
		}
	}
	return err
}

func (a *app) usage(flags *pflag.FlagSet) {
	fmt.Fprintf(a.stderr, "usage: cosfs [flags] command [args...]\n\n")
	fmt.Fprintf(a.stderr, "Commands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(a.stderr, "  %-7s %s\n", name, commands[name].help)
	}
	fmt.Fprintf(a.stderr, "\nFlags:\n%s", flags.FlagUsages())
}
