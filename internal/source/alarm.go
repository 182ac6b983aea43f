package source

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// AlarmAPI is the slice of the CloudWatch client used by AlarmStates.
type AlarmAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

// AlarmStates fetches the current state of CloudWatch alarms, optionally
// restricted to an alarm name prefix. Alarm state is instantaneous, so the
// check window is ignored; the API has no time filter.
type AlarmStates struct {
	client AlarmAPI
	prefix string
	log    *slog.Logger
}

// NewAlarmStates creates an AlarmStates source over a CloudWatch client.
func NewAlarmStates(client AlarmAPI, prefix string, log *slog.Logger) *AlarmStates {
	return &AlarmStates{client: client, prefix: prefix, log: log}
}

// Fetch describes all matching alarms, metric and composite alike,
// following pagination until the service stops returning a token.
func (s *AlarmStates) Fetch(ctx context.Context, _ Window) ([]Record, error) {
	const op = "describe alarms"

	in := &cloudwatch.DescribeAlarmsInput{
		// 100 is the DescribeAlarms maximum page size.
		MaxRecords: aws.Int32(100),
	}
	if s.prefix != "" {
		in.AlarmNamePrefix = aws.String(s.prefix)
	}

	var records []Record
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, errf(op, errTooManyPages)
		}

		out, err := s.client.DescribeAlarms(ctx, in)
		if err != nil {
			return nil, errf(op, err)
		}

		s.log.Debug("alarm page fetched",
			"page", page,
			"metric_alarms", len(out.MetricAlarms),
			"composite_alarms", len(out.CompositeAlarms))

		for _, a := range out.MetricAlarms {
			rec := Record{State: string(a.StateValue)}
			if a.StateUpdatedTimestamp != nil {
				rec.Timestamp = *a.StateUpdatedTimestamp
			}
			records = append(records, rec)
		}
		for _, a := range out.CompositeAlarms {
			rec := Record{State: string(a.StateValue)}
			if a.StateUpdatedTimestamp != nil {
				rec.Timestamp = *a.StateUpdatedTimestamp
			}
			records = append(records, rec)
		}

		if !morePages(out.NextToken) {
			return records, nil
		}
		in.NextToken = out.NextToken
	}
}
