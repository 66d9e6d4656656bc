package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/fragpipe/internal/history"
	"github.com/gogpu/fragpipe/script"
	"github.com/gogpu/fragpipe/transform"
)

func (a *app) transformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List the available transforms and script verbs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TRANSFORM\tDESCRIPTION")
			for _, name := range transform.Builtins().Names() {
				fmt.Fprintf(w, "%s\t%s\n", name, transform.Descriptions[name])
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "VERB\tUSAGE")
			for _, verb := range script.Verbs() {
				fmt.Fprintf(w, "%s\t%s\n", verb, script.Usage(verb))
			}
			return w.Flush()
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded pipeline runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "history is disabled")
				return nil
			}
			store, err := history.Open(a.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", run.ID, run.Script, result(run.OK))
				for _, t := range run.Tasks {
					fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", t.Seq, t.Description, t.Status, t.Duration, t.Message)
				}
				return w.Flush()
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tELAPSED\tRESULT\tSCRIPT")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Started.Format(time.DateTime), r.Elapsed.Round(time.Microsecond), result(r.OK), r.Script)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func result(ok bool) string {
	if ok {
		return "OK"
	}
	return "Failed"
}
