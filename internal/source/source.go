// Package source fetches raw check records from AWS management APIs.
//
// Each Source is constructed with its probe-specific filters and runs the
// whole fetch protocol for its API: server-side time filtering where the
// service supports it, transparent pagination, and the list-then-hydrate
// round trip GuardDuty requires. Callers only ever see fully hydrated
// Records in page order.
package source

import (
	"context"
	"fmt"
	"time"
)

// Record is one unit of raw check data, normalized at the API boundary so
// nothing downstream reaches into provider response shapes. Fields not
// meaningful for a given source are left zero.
type Record struct {
	// State is a discrete status value, e.g. a backup job state or an
	// alarm state.
	State string

	// Severity is the provider-assigned severity of a finding.
	Severity float64

	// Type is the provider's record type, e.g. a GuardDuty finding type.
	Type string

	// Archived marks records the provider has archived.
	Archived bool

	// ConnectionDirection is the network action direction on findings
	// that carry one ("INBOUND", "OUTBOUND"), empty otherwise.
	ConnectionDirection string

	// Value and Unit carry a scalar observation such as a metric
	// datapoint.
	Value float64
	Unit  string

	// Timestamp is the record's own time: job creation, datapoint time,
	// finding update.
	Timestamp time.Time
}

// Window is the trailing time span a check considers.
type Window struct {
	Since time.Time
	Until time.Time
}

// WindowEnding builds a Window covering the span ending at until.
func WindowEnding(until time.Time, span time.Duration) Window {
	return Window{Since: until.Add(-span), Until: until}
}

// Span returns the window's length.
func (w Window) Span() time.Duration { return w.Until.Sub(w.Since) }

// Source is a one-shot fetch of check records against an external API.
type Source interface {
	// Fetch returns all records inside the window. Sources whose API has
	// no time filter ignore it. Any transport, authorization, or protocol
	// failure is reported as a *Error.
	Fetch(ctx context.Context, w Window) ([]Record, error)
}

// maxPages bounds every pagination loop. A service feeding an endless
// continuation-token chain is a protocol failure, not a bigger fetch.
const maxPages = 100

var errTooManyPages = fmt.Errorf("pagination did not terminate within %d pages", maxPages)

// Error wraps any failure inside a Source with the API operation that
// failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errf(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// morePages reports whether a continuation token signals another page.
// AWS APIs end pagination either by omitting the token or by returning an
// empty string; both are terminal.
func morePages(token *string) bool {
	return token != nil && *token != ""
}
