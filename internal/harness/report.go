package harness

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Reporter renders the console report stream: one line per statement and
// check, a banner, and the closing summary. It is presentation only — the
// Runner decides what happened, the Reporter decides what it looks like.
type Reporter struct {
	w      io.Writer
	silent bool

	ok    lipgloss.Style
	fail  lipgloss.Style
	state lipgloss.Style
	note  lipgloss.Style
}

// NewReporter writes report lines to w. Color is explicit rather than
// auto-detected: the -c flag forces ANSI colors on, otherwise output is
// plain. Silent suppresses every line including the summary.
func NewReporter(w io.Writer, color, silent bool) *Reporter {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{
		w:      w,
		silent: silent,
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		state:  r.NewStyle().Foreground(lipgloss.Color("4")),
		note:   r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Banner prints the run header with a timestamp.
func (r *Reporter) Banner(name string, t time.Time) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "%s unit tests\n%s\nbegin:\n\n", name, t.Format(time.ANSIC))
}

// Note prints a phase heading.
func (r *Reporter) Note(name string) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "%s\n", r.note.Render(name))
}

// Statement prints an executed statement.
func (r *Reporter) Statement(text string) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "   %s:\t%s\n", r.state.Render("state"), text)
}

// Must prints the announcement line for a mandatory check.
func (r *Reporter) Must(text string) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "    %s:\t%s\n", r.state.Render("must"), text)
}

// Pass prints a passing check line.
func (r *Reporter) Pass(text string) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "      %s:\t%s\n", r.ok.Render("ok"), text)
}

// Fail prints a failing check line with its declaration site.
func (r *Reporter) Fail(text, file string, line int) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "  %s:\t%s (%s:%d)\n", r.fail.Render("FAILED"), text, filepath.Base(file), line)
}

// Fault prints the class of an intercepted fatal fault.
func (r *Reporter) Fault(name string) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "caught %s\n", name)
}

// Summary prints the closing pass ratio and elapsed time.
func (r *Reporter) Summary(name string, s Summary) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.w, "\n\n%s unit tests\npassed  %d/%d\ntime    %.3fs\n",
		name, s.Passed, s.Total, s.Elapsed.Seconds())
}
