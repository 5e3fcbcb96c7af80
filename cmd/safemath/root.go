package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/gen"
)

type rootOptions struct {
	ConfigPath string
	Dir        string
	Verbose    bool

	stderr io.Writer
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "safemath",
		Short: "Checked arithmetic generator",
		Long: `safemath rewrites functions marked with //safemath:checked so that every
arithmetic operation in them is checked and the first failure comes out as
the function's error. It also derives capability methods for types marked
with //safemath:derive(...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file, "+config.FileName+" is looked up from the working directory upwards by default")
	cmd.PersistentFlags().StringVarP(&opts.Dir, "dir", "C", "", "run as if started in this directory")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newGenCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))

	return cmd
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) config() (config.Config, error) {
	if o.ConfigPath != "" {
		return config.Load(o.ConfigPath)
	}

	dir := o.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	path, ok := config.Find(dir)
	if !ok {
		return config.Default(), nil
	}
	return config.Load(path)
}

// run executes the generator and prints diagnostics it found.
func (o *rootOptions) run(cmd *cobra.Command, patterns []string, dryRun bool) (*gen.Result, error) {
	o.stderr = cmd.ErrOrStderr()
	cfg, err := o.config()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := o.logger()
	log.Debug("config", "tag", cfg.Tag, "output", cfg.Output, "runtime", cfg.Runtime.Path)

	g := gen.New(cfg, gen.WithLogger(log), gen.WithDryRun(dryRun), gen.WithDir(o.Dir))
	res, err := g.Run(cmd.Context(), patterns...)
	if res != nil {
		res.Diagnostics.PrintSummary(o.stderr, res.Fset, colored(o.stderr))
	}
	return res, err
}

func colored(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
