// Package check wires a source, a classification mode, and the decision
// rules into the one-shot pipeline every probe shares. The probes differ
// only in the Probe table entries they supply; fetching, classifying,
// deciding, and failure handling are common.
package check

import (
	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/source"
)

// Mode selects how a probe's records are classified and judged.
type Mode int

const (
	// ModeCount groups records by state and compares one bucket's count
	// against integer thresholds.
	ModeCount Mode = iota

	// ModeBands buckets records by severity and escalates when a band is
	// occupied at all.
	ModeBands

	// ModeScalar compares a single observed value against the thresholds
	// using the configured comparator.
	ModeScalar
)

// Probe describes one check variant: where records come from, how they are
// classified, and how the outcome is phrased.
type Probe struct {
	// Tag identifies the check family on the status line, e.g. "AWS-BACKUP".
	Tag string

	// Mode selects the classification and decision path.
	Mode Mode

	// Source fetches the raw records.
	Source source.Source

	// StateBucket is the bucket whose count is judged in ModeCount,
	// e.g. "FAILED" or "ALARM".
	StateBucket string

	// Exclude adds probe-specific record exclusion in ModeBands, on top of
	// the always-applied archived check.
	Exclude func(source.Record) bool

	// Summarize renders the human-readable part of the status line from a
	// successful classification.
	Summarize func(c classifier.Classification, cr Criteria) string
}
