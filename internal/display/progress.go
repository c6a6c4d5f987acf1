package display

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// ProgressIndicator shows progress through a multi-format build
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	failed  int

	step *color.Color
	ok   *color.Color
	bad  *color.Color
}

// NewProgressIndicator creates a progress indicator over total build formats
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
		step:   color.New(color.FgCyan),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "Building %d %s:\n", p.total, formats(p.total))
}

// Step announces the next format: [N/Total] name
func (p *ProgressIndicator) Step(name string) {
	p.current++
	p.step.Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.total, name)
}

// Done marks the current format as built
func (p *ProgressIndicator) Done(name string, took time.Duration) {
	p.ok.Fprintf(p.writer, "  ✓ %s (%s)\n", name, took.Round(time.Millisecond))
}

// Fail marks the current format as failed
func (p *ProgressIndicator) Fail(name string, reason string) {
	p.failed++
	p.bad.Fprintf(p.writer, "  ✗ %s: %s\n", name, reason)
}

// Failed returns how many formats failed so far.
func (p *ProgressIndicator) Failed() int {
	return p.failed
}

// Complete displays the outcome of the whole build
func (p *ProgressIndicator) Complete() {
	if p.failed > 0 {
		fmt.Fprintf(p.writer, "%s %d of %d %s failed\n", p.bad.Sprint("✗"), p.failed, p.current, formats(p.current))
		return
	}
	fmt.Fprintf(p.writer, "%s Built %d %s\n", p.ok.Sprint("✓"), p.current, formats(p.current))
}

func formats(n int) string {
	if n == 1 {
		return "format"
	}
	return "formats"
}
