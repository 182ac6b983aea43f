package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricAPI is the slice of the CloudWatch client used by MetricStatistics.
type MetricAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// ValidStatistics lists the statistic names a MetricQuery accepts, spelled
// the way CloudWatch spells them.
var ValidStatistics = []string{"SampleCount", "Average", "Sum", "Minimum", "Maximum"}

// Dimension is one CloudWatch dimension name/value pair.
type Dimension struct {
	Name  string
	Value string
}

// ParseDimensions parses the flag syntax "Name=Value,Name=Value" into
// dimension pairs. An empty string means no dimensions.
func ParseDimensions(s string) ([]Dimension, error) {
	if s == "" {
		return nil, nil
	}

	var dims []Dimension
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed dimension %q (want Name=Value)", pair)
		}
		dims = append(dims, Dimension{Name: name, Value: value})
	}
	return dims, nil
}

// MetricQuery identifies one CloudWatch metric statistic to observe.
type MetricQuery struct {
	Namespace  string
	MetricName string
	Statistic  string
	Dimensions []Dimension
}

// MetricStatistics fetches datapoints for one CloudWatch metric statistic
// over the check window. The window span doubles as the aggregation period,
// so a quiet metric still yields at most a handful of datapoints.
type MetricStatistics struct {
	client MetricAPI
	query  MetricQuery
	log    *slog.Logger
}

// NewMetricStatistics creates a MetricStatistics source over a CloudWatch
// client.
func NewMetricStatistics(client MetricAPI, query MetricQuery, log *slog.Logger) *MetricStatistics {
	return &MetricStatistics{client: client, query: query, log: log}
}

// Fetch requests the statistic for the window and returns one Record per
// datapoint that actually carries the requested statistic.
func (s *MetricStatistics) Fetch(ctx context.Context, w Window) ([]Record, error) {
	const op = "get metric statistics"

	dims := make([]types.Dimension, len(s.query.Dimensions))
	for i, d := range s.query.Dimensions {
		dims[i] = types.Dimension{Name: aws.String(d.Name), Value: aws.String(d.Value)}
	}

	in := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(s.query.Namespace),
		MetricName: aws.String(s.query.MetricName),
		Dimensions: dims,
		StartTime:  aws.Time(w.Since),
		EndTime:    aws.Time(w.Until),
		Period:     aws.Int32(int32(w.Span().Seconds())),
		Statistics: []types.Statistic{types.Statistic(s.query.Statistic)},
	}

	out, err := s.client.GetMetricStatistics(ctx, in)
	if err != nil {
		return nil, errf(op, err)
	}

	s.log.Debug("metric statistics fetched",
		"namespace", s.query.Namespace,
		"metric", s.query.MetricName,
		"datapoints", len(out.Datapoints))

	var records []Record
	for _, dp := range out.Datapoints {
		if rec, ok := datapointRecord(dp, s.query.Statistic); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// datapointRecord extracts the requested statistic from a datapoint. The
// response sets only the fields that were asked for, so a nil field means
// the datapoint has nothing for this query.
func datapointRecord(dp types.Datapoint, statistic string) (Record, bool) {
	var v *float64
	switch types.Statistic(statistic) {
	case types.StatisticSampleCount:
		v = dp.SampleCount
	case types.StatisticAverage:
		v = dp.Average
	case types.StatisticSum:
		v = dp.Sum
	case types.StatisticMinimum:
		v = dp.Minimum
	case types.StatisticMaximum:
		v = dp.Maximum
	}
	if v == nil {
		return Record{}, false
	}

	rec := Record{Value: *v, Unit: string(dp.Unit)}
	if dp.Timestamp != nil {
		rec.Timestamp = *dp.Timestamp
	}
	return rec, true
}
