package check

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/compare"
	"github.com/setevik/awscheck/internal/source"
	"github.com/setevik/awscheck/internal/verdict"
)

// Run executes one complete check: fetch, classify, decide. Every failure,
// source error, classification error, even a panic, collapses into an
// UNKNOWN verdict so the caller always has exactly one verdict to report.
func Run(ctx context.Context, p Probe, cr Criteria, log *slog.Logger) (v verdict.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("check panicked", "panic", r)
			v = verdict.Verdict{
				Level:   verdict.Unknown,
				Message: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	w := source.WindowEnding(time.Now().UTC(), cr.Window)

	records, err := p.Source.Fetch(ctx, w)
	if err != nil {
		log.Error("fetch failed", "error", err)
		return verdict.Unknownf(err)
	}
	log.Info("records fetched", "count", len(records))

	c, err := classify(p, cr, records)
	if err != nil {
		log.Error("classification failed", "error", err)
		return verdict.Unknownf(err)
	}

	level := Decide(p, cr, c)
	log.Info("verdict decided", "level", level.Label())

	return verdict.Verdict{Level: level, Message: p.Summarize(c, cr)}
}

func classify(p Probe, cr Criteria, records []source.Record) (classifier.Classification, error) {
	switch p.Mode {
	case ModeScalar:
		return classifier.LatestScalar(records)
	case ModeBands:
		return classifier.SeverityBands(records, classifier.Bands{
			Warning:  cr.Warning,
			Critical: cr.Critical,
			Exclude:  p.Exclude,
		}), nil
	default:
		return classifier.CountByState(records), nil
	}
}

// Decide maps a classification to a verdict level. The rule order is fixed:
// the critical condition is tested before the warning condition, and bucket
// counts escalate only on strictly-greater-than, so a count equal to its
// threshold stays at the lower level.
func Decide(p Probe, cr Criteria, c classifier.Classification) verdict.Level {
	switch p.Mode {
	case ModeScalar:
		switch {
		case compare.Apply(cr.Comparator, c.Scalar.Value, cr.Critical):
			return verdict.Critical
		case compare.Apply(cr.Comparator, c.Scalar.Value, cr.Warning):
			return verdict.Warning
		}
		return verdict.OK

	case ModeBands:
		switch {
		case c.Buckets[classifier.BucketCritical] > 0:
			return verdict.Critical
		case c.Buckets[classifier.BucketWarning] > 0:
			return verdict.Warning
		}
		return verdict.OK

	default:
		n := c.Buckets[p.StateBucket]
		switch {
		case n > cr.critCount:
			return verdict.Critical
		case n > cr.warnCount:
			return verdict.Warning
		}
		return verdict.OK
	}
}
