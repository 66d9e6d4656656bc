package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/fragpipe"
	"github.com/gogpu/fragpipe/internal/history"
	"github.com/gogpu/fragpipe/pipeline"
	"github.com/gogpu/fragpipe/script"
	"github.com/gogpu/fragpipe/transform"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

func (a *app) runCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a pipeline script",
		Long: `Parses and runs a pipeline script. Extra arguments are available in the
script as %0, %1, ...

Example:
  fragpipe run clean.fp scan.png scan.clean.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, scriptArgs := args[0], args[1:]
			if watch {
				return a.watchScript(cmd, path, scriptArgs)
			}
			return a.runScript(cmd, path, scriptArgs)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run the script whenever it changes")
	return cmd
}

func (a *app) runScript(cmd *cobra.Command, path string, args []string) error {
	p := script.NewParser(
		script.WithRegistry(transform.Builtins()),
		script.WithArgs(args...),
	)
	tasks, err := p.ParseFile(path)
	if err != nil {
		return err
	}
	return a.execute(cmd, path, tasks)
}

// execute runs tasks, prints their outcomes and records the run.
func (a *app) execute(cmd *cobra.Command, name string, tasks []pipeline.Task) error {
	ctx := cmd.Context()
	out := newPrinter(cmd.OutOrStdout())

	r := pipeline.Runner{OnOutcome: out.outcome}
	report, err := r.Run(ctx, tasks)
	out.summary(report)
	a.record(ctx, name, report)

	if err != nil {
		fragpipe.Logger().Debug("fragpipe: run failed", "script", name, "error", err)
		return errRunFailed
	}
	return nil
}

// record stores the report in the history database. Failures are logged
// and do not affect the run result.
func (a *app) record(ctx context.Context, name string, report *pipeline.Report) {
	if !a.cfg.History.Enabled {
		return
	}
	store, err := history.Open(a.cfg.HistoryPath())
	if err != nil {
		fragpipe.Logger().Warn("fragpipe: history unavailable", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(context.WithoutCancel(ctx), name, report); err != nil {
		fragpipe.Logger().Warn("fragpipe: history record failed", "error", err)
	}
}

// watchScript runs the script, then runs it again after every change until
// the command context is canceled.
func (a *app) watchScript(cmd *cobra.Command, path string, args []string) error {
	ctx := cmd.Context()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	rerun := func() {
		if err := a.runScript(cmd, path, args); err != nil && !errors.Is(err, errRunFailed) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes ...\n", path)
	}
	rerun()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isScriptChange(event, path) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fragpipe.Logger().Warn("fragpipe: watch error", "error", err)

		case <-timer.C:
			rerun()
		}
	}
}

// isScriptChange reports whether event modified or recreated the script.
func isScriptChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
