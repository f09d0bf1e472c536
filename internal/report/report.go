// Package report renders comparison outcomes and run errors for a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tuannm99/sqlab/internal/compare"
)

const usage = `Usage:
 > sqlab <scriptA> <scriptB> [--only N] [--config path] [--connection name] [--verbose] [--no-color]

Scripts may be local paths, git:<rev>:<path> or s3://bucket/key.`

type Reporter struct {
	out io.Writer
	dmp *diffmatchpatch.DiffMatchPatch

	color bool
	red   lipgloss.Style
	green lipgloss.Style
	amber lipgloss.Style
	faint lipgloss.Style
}

// New writes to out. With color false every line is plain text; with color
// true lipgloss still downgrades styling when out is not a terminal.
func New(out io.Writer, color bool) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:   out,
		dmp:   diffmatchpatch.New(),
		color: color,
		red:   r.NewStyle().Foreground(lipgloss.Color("9")),
		green: r.NewStyle().Foreground(lipgloss.Color("10")),
		amber: r.NewStyle().Foreground(lipgloss.Color("11")),
		faint: r.NewStyle().Faint(true),
	}
}

func (r *Reporter) paint(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *Reporter) line(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Reporter) Usage(reason string) {
	if reason != "" {
		r.line("%s", r.paint(r.red, reason))
	}
	r.line("%s", usage)
}

func (r *Reporter) Warning(msg string) {
	r.line("%s", r.paint(r.amber, "Warning: "+msg))
}

func (r *Reporter) NotFound(ref string, err error) {
	r.line("Can't load SQL file '%s'", ref)
	if err != nil {
		r.line("%s", r.paint(r.faint, "  "+err.Error()))
	}
}

// Error reports a failed run; label names the script ("A" or "B") when the
// failure belongs to one.
func (r *Reporter) Error(label string, err error) {
	msg := fmt.Sprintf("Error: %v", err)
	if label != "" {
		msg = fmt.Sprintf("Error: (script %s) %v", label, err)
	}
	r.line("%s", r.paint(r.red, msg))
}

// Outcome prints every disagreement, then the verdict and the row counter.
func (r *Reporter) Outcome(o compare.Outcome) {
	if o.Policy.IsFixed() {
		r.line("%s", r.paint(r.faint, "Comparing "+o.Policy.String()))
	}

	if o.LengthMismatch {
		r.line("%s", r.paint(r.red, "Fail: different number of records"))
		r.line("A has %d records", o.LenA)
		r.line("B has %d records", o.LenB)
	}

	for _, m := range o.Mismatches {
		r.line("%s", r.paint(r.red, fmt.Sprintf("Fail: row number %d has differences", m.Index)))
		r.line("A ='%s'", m.A)
		r.line("B ='%s'", m.B)
		r.line("  %s", r.InlineDiff(m.A, m.B))
	}

	if o.EmptyWarning {
		r.Warning("There were no results to compare. Check your SQL files.")
	}
	if o.Success() {
		r.line("%s", r.paint(r.green, "Success: The results are the same."))
	}

	r.line("Rows processed: %d", o.RowsCompared)
	r.line("Done")
}

// InlineDiff marks removed text as [-x-] and added text as {+x+}.
func (r *Reporter) InlineDiff(a, b string) string {
	diffs := r.dmp.DiffMain(a, b, false)
	diffs = r.dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString(r.paint(r.red, "[-"+d.Text+"-]"))
		case diffmatchpatch.DiffInsert:
			sb.WriteString(r.paint(r.green, "{+"+d.Text+"+}"))
		}
	}
	return sb.String()
}
