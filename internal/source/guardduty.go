package source

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/guardduty/types"
)

// GuardDutyAPI is the slice of the GuardDuty client used by Findings.
type GuardDutyAPI interface {
	ListDetectors(ctx context.Context, params *guardduty.ListDetectorsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error)
	ListFindings(ctx context.Context, params *guardduty.ListFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListFindingsOutput, error)
	GetFindings(ctx context.Context, params *guardduty.GetFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error)
}

// findingBatch is the GetFindings maximum: at most 50 finding IDs per call.
// ListFindings pages happen to share the same cap.
const findingBatch = 50

// Findings fetches GuardDuty findings updated inside the check window.
//
// The protocol is two-stage: ListFindings returns bare finding IDs, so every
// ID page is hydrated through GetFindings before anything is returned.
// Detectors are enumerated first; an account normally has one per region,
// but the listing is paginated all the same.
type Findings struct {
	client GuardDutyAPI
	log    *slog.Logger

	// minSeverity bounds the listing below, server-side. GuardDuty only
	// accepts whole numbers here, so the fractional part is floored and
	// precise banding is left to the caller.
	minSeverity float64

	// excludeTypes are finding types filtered out server-side.
	excludeTypes []string
}

// NewFindings creates a Findings source over a GuardDuty client.
func NewFindings(client GuardDutyAPI, minSeverity float64, excludeTypes []string, log *slog.Logger) *Findings {
	return &Findings{
		client:       client,
		minSeverity:  minSeverity,
		excludeTypes: excludeTypes,
		log:          log,
	}
}

// Fetch lists every detector in the region, then lists and hydrates all
// findings updated at or after the window start.
func (s *Findings) Fetch(ctx context.Context, w Window) ([]Record, error) {
	detectors, err := s.listDetectors(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("detectors listed", "count", len(detectors))

	var records []Record
	for _, detector := range detectors {
		recs, err := s.detectorFindings(ctx, detector, w)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func (s *Findings) listDetectors(ctx context.Context) ([]string, error) {
	const op = "list detectors"

	in := &guardduty.ListDetectorsInput{
		// 50 is the ListDetectors maximum page size.
		MaxResults: aws.Int32(50),
	}

	var detectors []string
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, errf(op, errTooManyPages)
		}

		out, err := s.client.ListDetectors(ctx, in)
		if err != nil {
			return nil, errf(op, err)
		}
		detectors = append(detectors, out.DetectorIds...)

		if !morePages(out.NextToken) {
			return detectors, nil
		}
		in.NextToken = out.NextToken
	}
}

// detectorFindings pages through one detector's finding IDs and hydrates
// each page before moving on, keeping records in page order.
func (s *Findings) detectorFindings(ctx context.Context, detector string, w Window) ([]Record, error) {
	const op = "list findings"

	in := &guardduty.ListFindingsInput{
		DetectorId:      aws.String(detector),
		MaxResults:      aws.Int32(findingBatch),
		FindingCriteria: s.criteria(w),
	}

	var records []Record
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, errf(op, errTooManyPages)
		}

		out, err := s.client.ListFindings(ctx, in)
		if err != nil {
			return nil, errf(op, err)
		}

		recs, err := s.hydrate(ctx, detector, out.FindingIds)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)

		if !morePages(out.NextToken) {
			return records, nil
		}
		in.NextToken = out.NextToken
	}
}

// criteria builds the server-side finding filter: updated inside the
// window, at or above the floored severity bound, and none of the excluded
// types.
func (s *Findings) criteria(w Window) *types.FindingCriteria {
	criterion := map[string]types.Condition{
		"updatedAt": {
			GreaterThanOrEqual: w.Since.UnixMilli(),
		},
		"severity": {
			GreaterThanOrEqual: int64(math.Floor(s.minSeverity)),
		},
	}
	if len(s.excludeTypes) > 0 {
		criterion["type"] = types.Condition{NotEquals: s.excludeTypes}
	}
	return &types.FindingCriteria{Criterion: criterion}
}

// hydrate resolves finding IDs into full findings, at most findingBatch per
// GetFindings call.
func (s *Findings) hydrate(ctx context.Context, detector string, ids []string) ([]Record, error) {
	const op = "get findings"

	var records []Record
	for start := 0; start < len(ids); start += findingBatch {
		batch := ids[start:min(start+findingBatch, len(ids))]

		out, err := s.client.GetFindings(ctx, &guardduty.GetFindingsInput{
			DetectorId: aws.String(detector),
			FindingIds: batch,
		})
		if err != nil {
			return nil, errf(op, err)
		}

		for _, f := range out.Findings {
			records = append(records, findingRecord(f))
		}
	}
	return records, nil
}

func findingRecord(f types.Finding) Record {
	rec := Record{Type: aws.ToString(f.Type)}
	if f.Severity != nil {
		rec.Severity = *f.Severity
	}
	if f.Service != nil {
		rec.Archived = aws.ToBool(f.Service.Archived)
		if a := f.Service.Action; a != nil && a.NetworkConnectionAction != nil {
			rec.ConnectionDirection = aws.ToString(a.NetworkConnectionAction.ConnectionDirection)
		}
	}
	if f.UpdatedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *f.UpdatedAt); err == nil {
			rec.Timestamp = ts
		}
	}
	return rec
}
