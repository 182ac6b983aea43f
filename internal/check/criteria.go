package check

import (
	"fmt"
	"time"

	"github.com/setevik/awscheck/internal/compare"
)

// ConfigError reports invalid or contradictory check configuration. It is
// always raised before any API call is made.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// Criteria is the validated, immutable configuration of one run: the
// look-back window and the thresholds the classification is judged against.
type Criteria struct {
	// Window is how far back the check looks. Zero means the probe has no
	// time dimension, as with alarm states.
	Window time.Duration

	// Warning and Critical are the raw threshold values. ModeScalar and
	// ModeBands use them as-is.
	Warning  float64
	Critical float64

	// Comparator relates an observed scalar to a threshold, ModeScalar only.
	Comparator compare.Op

	// Integral threshold forms used by ModeCount.
	warnCount int
	critCount int
}

// NewCriteria validates raw threshold configuration for the given mode.
// ModeScalar requires a known comparator name; the counting modes require
// warning not above critical, and ModeCount additionally requires the
// thresholds to be non-negative integers.
func NewCriteria(mode Mode, window time.Duration, warning, critical float64, comparator string) (Criteria, error) {
	cr := Criteria{Window: window, Warning: warning, Critical: critical}

	switch mode {
	case ModeScalar:
		op, err := compare.Parse(comparator)
		if err != nil {
			return Criteria{}, &ConfigError{Reason: err.Error()}
		}
		cr.Comparator = op

	case ModeCount:
		var err error
		if cr.warnCount, err = countThreshold("warning", warning); err != nil {
			return Criteria{}, err
		}
		if cr.critCount, err = countThreshold("critical", critical); err != nil {
			return Criteria{}, err
		}
		if warning > critical {
			return Criteria{}, &ConfigError{Reason: contradictory(warning, critical)}
		}

	case ModeBands:
		if warning > critical {
			return Criteria{}, &ConfigError{Reason: contradictory(warning, critical)}
		}

	default:
		return Criteria{}, &ConfigError{Reason: fmt.Sprintf("unknown check mode %d", mode)}
	}

	return cr, nil
}

func countThreshold(name string, v float64) (int, error) {
	n := int(v)
	if float64(n) != v || n < 0 {
		return 0, &ConfigError{Reason: fmt.Sprintf("%s threshold must be a non-negative integer, got %v", name, v)}
	}
	return n, nil
}

func contradictory(warning, critical float64) string {
	return fmt.Sprintf("warning threshold %v exceeds critical threshold %v", warning, critical)
}
