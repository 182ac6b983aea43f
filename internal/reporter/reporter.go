// Package reporter emits the single status line a monitoring supervisor
// parses and terminates the process with the verdict's exit code.
package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/setevik/awscheck/internal/verdict"
)

// Reporter writes verdicts in the fixed "<TAG> <LEVEL> - <message>" wire
// format. The output stream and exit hook are injectable so tests can
// capture the line and the code instead of terminating.
type Reporter struct {
	out  io.Writer
	exit func(int)
}

// New creates a Reporter bound to stdout and os.Exit.
func New() *Reporter {
	return &Reporter{out: os.Stdout, exit: os.Exit}
}

// Emit writes the status line for v under the given tag and exits with the
// verdict's code. The line is exactly the tag, the level label, a dash
// separator, and the message; no trailing newline is added, so the
// supervisor sees precisely one line. Emit does not return in production.
func (r *Reporter) Emit(tag string, v verdict.Verdict) {
	fmt.Fprintf(r.out, "%s %s - %s", tag, v.Level.Label(), v.Message)
	r.exit(v.Level.ExitCode())
}
