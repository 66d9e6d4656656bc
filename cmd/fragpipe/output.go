package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/fragpipe/pipeline"
)

// printer writes per-task status lines and run summaries.
type printer struct {
	w io.Writer

	ok   lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
	bold lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:    w,
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:  r.NewStyle().Foreground(lipgloss.Color("8")),
		bold: r.NewStyle().Bold(true),
	}
}

// outcome prints one task line. Skipped tasks are not printed.
func (p *printer) outcome(o pipeline.Outcome) {
	switch o.Status {
	case pipeline.StatusSucceeded:
		fmt.Fprintf(p.w, ">> %s : done in %s msecs, result : %s\n",
			o.Description, msecs(o.Duration), p.ok.Render("OK"))
	case pipeline.StatusFailed:
		fmt.Fprintf(p.w, ">> %s : done in %s msecs, result : %s; message : %s\n",
			o.Description, msecs(o.Duration), p.fail.Render("Failed"), o.Message)
	}
}

// summary prints the total time and, on failure, the failure marker.
func (p *printer) summary(r *pipeline.Report) {
	fmt.Fprintf(p.w, "Done in %s msecs %s\n", p.bold.Render(msecs(r.Elapsed)), p.dim.Render("(run "+r.RunID.String()+")"))
	if _, failed := r.Failed(); failed {
		fmt.Fprintln(p.w, p.fail.Render("Result: Failed!"))
	}
}

func msecs(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d)/float64(time.Millisecond))
}
