// Package classifier reduces raw source records to the aggregate a verdict
// is decided on: named bucket counts, or a single scalar observation.
package classifier

import (
	"time"

	"github.com/setevik/awscheck/internal/source"
)

// Bucket names used by severity banding.
const (
	BucketCritical = "Critical"
	BucketWarning  = "Warning"
)

// Classification is the aggregated outcome of one record set.
type Classification struct {
	// Buckets maps bucket names to non-negative counts. Count-by-state
	// classification derives the names from the data; severity banding
	// always produces BucketCritical and BucketWarning.
	Buckets map[string]int

	// Scalar is the single observed value of a metric check, nil for the
	// counting modes.
	Scalar *Scalar
}

// Scalar is one observed metric value.
type Scalar struct {
	Value float64
	Unit  string
	Time  time.Time
}

// Error reports a record set the classifier cannot reduce. It is a contract
// problem between source and check, not a provider failure, but it degrades
// the run to UNKNOWN just the same.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// CountByState groups records by their discrete state value. No state set
// is predefined; whatever states the records carry become the buckets.
func CountByState(records []source.Record) Classification {
	buckets := make(map[string]int)
	for _, rec := range records {
		buckets[rec.State]++
	}
	return Classification{Buckets: buckets}
}

// Bands holds the thresholds and exclusions for severity banding.
type Bands struct {
	Warning  float64
	Critical float64

	// Exclude drops records beyond the always-applied archived check.
	// Nil excludes nothing extra.
	Exclude func(source.Record) bool
}

// SeverityBands counts records into the Critical and Warning buckets.
// Archived and excluded records are dropped first. Each remaining record
// lands in at most one bucket: the critical band is tested before the
// warning band so a high-severity record never falls through, and anything
// at or below the warning threshold lands in neither.
func SeverityBands(records []source.Record, b Bands) Classification {
	buckets := map[string]int{
		BucketCritical: 0,
		BucketWarning:  0,
	}
	for _, rec := range records {
		if rec.Archived {
			continue
		}
		if b.Exclude != nil && b.Exclude(rec) {
			continue
		}
		switch {
		case rec.Severity > b.Critical:
			buckets[BucketCritical]++
		case rec.Severity > b.Warning:
			buckets[BucketWarning]++
		}
	}
	return Classification{Buckets: buckets}
}

// LatestScalar reduces metric datapoint records to the most recent one.
// An empty record set is an *Error: the window produced nothing to compare
// against the thresholds.
func LatestScalar(records []source.Record) (Classification, error) {
	if len(records) == 0 {
		return Classification{}, &Error{Reason: "no datapoints returned for the period"}
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.Timestamp.After(latest.Timestamp) {
			latest = rec
		}
	}
	return Classification{Scalar: &Scalar{
		Value: latest.Value,
		Unit:  latest.Unit,
		Time:  latest.Timestamp,
	}}, nil
}
