// Command fragpipe runs fragment-parallel image pipelines.
//
//	fragpipe process scan.png --transform antistamp --workers 8 --fragment 32
//	fragpipe run clean.fp scan.png out.png
//	fragpipe run clean.fp scan.png out.png --watch
//	fragpipe transforms
//	fragpipe history --limit 5
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gogpu/fragpipe"
	"github.com/gogpu/fragpipe/internal/config"
)

// errRunFailed is returned when a pipeline ran but one of its tasks failed.
// The failure has already been reported on stdout.
var errRunFailed = errors.New("pipeline failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// app holds state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fragpipe",
		Short: "Fragment-parallel image pipelines",
		Long: `fragpipe applies per-pixel transforms to images by cutting them into
fragments and processing the fragments on a fixed set of workers.

Pipelines are either built from flags (process) or read from a script (run).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (default from config)")

	root.AddCommand(
		a.processCmd(),
		a.runCmd(),
		a.transformsCmd(),
		a.historyCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	fragpipe.SetLogger(newLogger(cmd.ErrOrStderr(), cfg.Logging.Format, level))
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
