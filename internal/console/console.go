// Package console prints user-facing notices, errors and the commit preview.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorError = lipgloss.Color("196")
	colorDim   = lipgloss.Color("241")
	colorOK    = lipgloss.Color("42")

	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	dividerStyle = lipgloss.NewStyle().Foreground(colorDim)
	successStyle = lipgloss.NewStyle().Foreground(colorOK)
)

const dividerWidth = 50

// Printer writes notices to Out and errors to Err. Notices are dropped when
// Quiet is set; errors never are.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// New returns a Printer on stdout and stderr.
func New(quiet bool) *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Quiet: quiet}
}

// Infof prints a notice line.
func (p *Printer) Infof(format string, args ...any) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Successf prints a highlighted notice line.
func (p *Printer) Successf(format string, args ...any) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.Out, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints "Error: <msg>" to Err.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.Err, errorStyle.Render("Error: "+fmt.Sprintf(format, args...)))
}

// Preview prints msg between two divider lines.
func (p *Printer) Preview(msg string) {
	if p.Quiet {
		return
	}
	divider := dividerStyle.Render(strings.Repeat("─", dividerWidth))
	fmt.Fprintln(p.Out, "Commit message preview:")
	fmt.Fprintln(p.Out, divider)
	fmt.Fprintln(p.Out, msg)
	fmt.Fprintln(p.Out, divider)
	fmt.Fprintln(p.Out)
}

// ResolveQuiet decides whether notices are shown. --verbose wins over
// --quiet, which wins over the configured default.
func ResolveQuiet(verbose, quiet, alwaysQuiet bool) bool {
	if verbose {
		return false
	}
	if quiet {
		return true
	}
	return alwaysQuiet
}
