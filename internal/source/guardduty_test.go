package source

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/guardduty/types"
)

type fakeGuardDutyAPI struct {
	detectorPages []*guardduty.ListDetectorsOutput
	findingPages  []*guardduty.ListFindingsOutput
	findings      map[string]types.Finding

	listCalls []guardduty.ListFindingsInput
	getCalls  [][]string
	getErr    error
}

func (f *fakeGuardDutyAPI) ListDetectors(_ context.Context, _ *guardduty.ListDetectorsInput, _ ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error) {
	if len(f.detectorPages) == 0 {
		return &guardduty.ListDetectorsOutput{}, nil
	}
	out := f.detectorPages[0]
	f.detectorPages = f.detectorPages[1:]
	return out, nil
}

func (f *fakeGuardDutyAPI) ListFindings(_ context.Context, in *guardduty.ListFindingsInput, _ ...func(*guardduty.Options)) (*guardduty.ListFindingsOutput, error) {
	f.listCalls = append(f.listCalls, *in)
	if len(f.findingPages) == 0 {
		return &guardduty.ListFindingsOutput{}, nil
	}
	out := f.findingPages[0]
	f.findingPages = f.findingPages[1:]
	return out, nil
}

func (f *fakeGuardDutyAPI) GetFindings(_ context.Context, in *guardduty.GetFindingsInput, _ ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error) {
	f.getCalls = append(f.getCalls, in.FindingIds)
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := &guardduty.GetFindingsOutput{}
	for _, id := range in.FindingIds {
		if finding, ok := f.findings[id]; ok {
			out.Findings = append(out.Findings, finding)
		}
	}
	return out, nil
}

func finding(id string, severity float64) types.Finding {
	return types.Finding{
		Id:        aws.String(id),
		Type:      aws.String("Recon:EC2/PortProbeUnprotectedPort"),
		Severity:  aws.Float64(severity),
		UpdatedAt: aws.String("2026-03-01T10:30:00.000Z"),
		Service:   &types.Service{Archived: aws.Bool(false)},
	}
}

func TestFindingsFetch(t *testing.T) {
	api := &fakeGuardDutyAPI{
		detectorPages: []*guardduty.ListDetectorsOutput{
			{DetectorIds: []string{"d-1", "d-2"}},
		},
		findingPages: []*guardduty.ListFindingsOutput{
			{FindingIds: []string{"f1", "f2"}, NextToken: aws.String("t1")},
			{FindingIds: []string{"f3"}},
			{FindingIds: []string{"f4"}},
		},
		findings: map[string]types.Finding{
			"f1": finding("f1", 8.5),
			"f2": finding("f2", 5.0),
			"f3": finding("f3", 4.5),
			"f4": finding("f4", 7.5),
		},
	}

	src := NewFindings(api, 4.0, nil, testLog)
	records, err := src.Fetch(context.Background(), WindowEnding(time.Now(), 48*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantSeverities := []float64{8.5, 5.0, 4.5, 7.5}
	if len(records) != len(wantSeverities) {
		t.Fatalf("got %d records, want %d", len(records), len(wantSeverities))
	}
	for i, want := range wantSeverities {
		if records[i].Severity != want {
			t.Errorf("records[%d].Severity = %v, want %v", i, records[i].Severity, want)
		}
	}

	// Two pages for d-1, one for d-2, each hydrated as it arrived.
	if len(api.listCalls) != 3 {
		t.Fatalf("got %d ListFindings calls, want 3", len(api.listCalls))
	}
	if got := aws.ToString(api.listCalls[0].DetectorId); got != "d-1" {
		t.Errorf("first ListFindings detector = %q", got)
	}
	if got := aws.ToString(api.listCalls[1].NextToken); got != "t1" {
		t.Errorf("second ListFindings token = %q, want %q", got, "t1")
	}
	if got := aws.ToString(api.listCalls[2].DetectorId); got != "d-2" {
		t.Errorf("third ListFindings detector = %q", got)
	}
	if len(api.getCalls) != 3 {
		t.Errorf("got %d GetFindings calls, want 3", len(api.getCalls))
	}
}

func TestFindingsCriteria(t *testing.T) {
	src := NewFindings(&fakeGuardDutyAPI{}, 4.5, []string{"Recon:EC2/Portscan"}, testLog)

	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := WindowEnding(until, 48*time.Hour)
	criteria := src.criteria(w)

	updated, ok := criteria.Criterion["updatedAt"]
	if !ok {
		t.Fatal("criteria missing updatedAt")
	}
	if want := w.Since.UnixMilli(); updated.GreaterThanOrEqual != want {
		t.Errorf("updatedAt bound = %d, want %d", updated.GreaterThanOrEqual, want)
	}

	severity, ok := criteria.Criterion["severity"]
	if !ok {
		t.Fatal("criteria missing severity")
	}
	// 4.5 floors to 4; exact banding happens after the fetch.
	if severity.GreaterThanOrEqual != 4 {
		t.Errorf("severity bound = %d, want 4", severity.GreaterThanOrEqual)
	}

	typeCond, ok := criteria.Criterion["type"]
	if !ok {
		t.Fatal("criteria missing type")
	}
	if len(typeCond.NotEquals) != 1 || typeCond.NotEquals[0] != "Recon:EC2/Portscan" {
		t.Errorf("type NotEquals = %v", typeCond.NotEquals)
	}
}

func TestFindingsCriteriaNoExcludes(t *testing.T) {
	src := NewFindings(&fakeGuardDutyAPI{}, 4.0, nil, testLog)
	criteria := src.criteria(WindowEnding(time.Now(), time.Hour))

	if _, ok := criteria.Criterion["type"]; ok {
		t.Error("criteria has a type condition with no excludes configured")
	}
}

func TestHydrateBatching(t *testing.T) {
	api := &fakeGuardDutyAPI{findings: map[string]types.Finding{}}
	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("f%03d", i)
		api.findings[ids[i]] = finding(ids[i], 5)
	}

	src := NewFindings(api, 4.0, nil, testLog)
	records, err := src.hydrate(context.Background(), "d-1", ids)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if len(records) != 120 {
		t.Errorf("got %d records, want 120", len(records))
	}
	wantBatches := []int{50, 50, 20}
	if len(api.getCalls) != len(wantBatches) {
		t.Fatalf("got %d GetFindings calls, want %d", len(api.getCalls), len(wantBatches))
	}
	for i, want := range wantBatches {
		if len(api.getCalls[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(api.getCalls[i]), want)
		}
	}
}

func TestFindingRecord(t *testing.T) {
	f := types.Finding{
		Type:      aws.String("UnauthorizedAccess:EC2/MaliciousIPCaller.Custom"),
		Severity:  aws.Float64(2.0),
		UpdatedAt: aws.String("2026-03-01T10:30:00.000Z"),
		Service: &types.Service{
			Archived: aws.Bool(true),
			Action: &types.Action{
				NetworkConnectionAction: &types.NetworkConnectionAction{
					ConnectionDirection: aws.String("INBOUND"),
				},
			},
		},
	}

	rec := findingRecord(f)
	if rec.Type != "UnauthorizedAccess:EC2/MaliciousIPCaller.Custom" {
		t.Errorf("Type = %q", rec.Type)
	}
	if rec.Severity != 2.0 {
		t.Errorf("Severity = %v", rec.Severity)
	}
	if !rec.Archived {
		t.Error("Archived = false, want true")
	}
	if rec.ConnectionDirection != "INBOUND" {
		t.Errorf("ConnectionDirection = %q", rec.ConnectionDirection)
	}
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
}

func TestFindingsHydrationError(t *testing.T) {
	api := &fakeGuardDutyAPI{
		detectorPages: []*guardduty.ListDetectorsOutput{{DetectorIds: []string{"d-1"}}},
		findingPages:  []*guardduty.ListFindingsOutput{{FindingIds: []string{"f1"}}},
		getErr:        errors.New("InternalServerError"),
	}

	src := NewFindings(api, 4.0, nil, testLog)
	_, err := src.Fetch(context.Background(), WindowEnding(time.Now(), time.Hour))

	var srcErr *Error
	if !errors.As(err, &srcErr) {
		t.Fatalf("error %T is not a *Error", err)
	}
	if srcErr.Op != "get findings" {
		t.Errorf("Op = %q, want %q", srcErr.Op, "get findings")
	}
}
