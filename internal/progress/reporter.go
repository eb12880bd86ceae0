// Package progress reports per-chatbot outcomes while snippets are generated.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Summary is the outcome of a generation run.
type Summary struct {
	Total  int
	Failed []string
}

// Generated is the number of snippets written.
func (s Summary) Generated() int { return s.Total - len(s.Failed) }

// Reporter tracks snippet generation, one bot definition at a time.
type Reporter interface {
	Start(total int)
	// Done records the outcome for one bot file; err is nil on success.
	Done(file string, err error)
	Finish() Summary
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// tally accumulates outcomes for both reporters.
type tally struct {
	summary Summary
	done    int
}

func (t *tally) start(total int) {
	t.summary = Summary{Total: total}
	t.done = 0
}

func (t *tally) record(file string, err error) {
	t.done++
	if err != nil {
		t.summary.Failed = append(t.summary.Failed, file)
	}
}

// TerminalReporter displays a progress bar whose description carries the
// running failure count.
type TerminalReporter struct {
	tally
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.start(total)
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Generating snippets"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Done(file string, err error) {
	r.record(file, err)
	if r.bar == nil {
		return
	}
	desc := file
	if n := len(r.summary.Failed); n > 0 {
		desc = fmt.Sprintf("%s (%d failed)", file, n)
	}
	r.bar.Describe(desc)
	_ = r.bar.Set(r.done)
}

func (r *TerminalReporter) Finish() Summary {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	return r.summary
}

// CIReporter prints one line per bot, suitable for CI logs.
type CIReporter struct {
	tally
	Out io.Writer
}

func (r *CIReporter) Start(total int) {
	r.start(total)
	fmt.Fprintf(r.Out, "Generating snippets for %d chatbots\n", total)
}

func (r *CIReporter) Done(file string, err error) {
	r.record(file, err)
	if err != nil {
		fmt.Fprintf(r.Out, "[%d/%d] FAILED %s: %v\n", r.done, r.summary.Total, file, err)
		return
	}
	fmt.Fprintf(r.Out, "[%d/%d] ok %s\n", r.done, r.summary.Total, file)
}

func (r *CIReporter) Finish() Summary {
	fmt.Fprintf(r.Out, "Generated %d of %d snippets\n", r.summary.Generated(), r.summary.Total)
	return r.summary
}
