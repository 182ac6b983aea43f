// Package verdict defines the terminal outcome of a check run: one of the
// four monitoring states plus a human-readable summary. The numeric state
// values double as process exit codes and are fixed by the supervisor
// contract, so they must never be renumbered.
package verdict

// Level is a monitoring state in escalation order.
type Level int

const (
	OK       Level = 0
	Warning  Level = 1
	Critical Level = 2
	Unknown  Level = 3
)

// Label returns the uppercase state name used on the status line.
func (l Level) Label() string {
	switch l {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for the level. Anything outside
// the known range reports as Unknown rather than leaking an arbitrary code
// to the supervisor.
func (l Level) ExitCode() int {
	if l < OK || l > Unknown {
		return int(Unknown)
	}
	return int(l)
}

// Verdict is the single result a check run produces.
type Verdict struct {
	Level   Level
	Message string
}

// Unknownf builds an Unknown verdict from a failure. Every internal error,
// whatever its origin, surfaces as one of these.
func Unknownf(err error) Verdict {
	return Verdict{Level: Unknown, Message: err.Error()}
}
