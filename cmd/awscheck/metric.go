package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/spf13/cobra"

	"github.com/setevik/awscheck/internal/check"
	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/format"
	"github.com/setevik/awscheck/internal/source"
)

type metricOptions struct {
	namespace  string
	metricName string
	dimensions string
	statistic  string
	period     int
	warning    float64
	critical   float64
	comparator string

	warningSet  bool
	criticalSet bool
}

func newMetricCmd(a *app) *cobra.Command {
	var opts metricOptions

	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Check a CloudWatch metric statistic against thresholds",
		Long: `Fetches one statistic for one CloudWatch metric over the look-back period
and compares the most recent datapoint against the thresholds using the
chosen comparator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			opts.warningSet = cmd.Flags().Changed("warning")
			opts.criticalSet = cmd.Flags().Changed("critical")
			a.runMetric(opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.namespace, "namespace", "", "metric namespace, e.g. AWS/RDS (required)")
	fl.StringVar(&opts.metricName, "metric", "", "metric name, e.g. CPUUtilization (required)")
	fl.StringVar(&opts.dimensions, "dimensions", "", "dimensions as Name=Value[,Name=Value...]")
	fl.StringVar(&opts.statistic, "statistic", "Average", "statistic (SampleCount, Average, Sum, Minimum, Maximum)")
	fl.IntVarP(&opts.period, "period", "P", 300, "look-back window and aggregation period in seconds")
	fl.Float64VarP(&opts.warning, "warning", "w", 0, "WARNING threshold (required)")
	fl.Float64VarP(&opts.critical, "critical", "c", 0, "CRITICAL threshold (required)")
	fl.StringVar(&opts.comparator, "comparator", "", "comparison operator: gt, ge, lt, le, eq, ne (required)")

	return cmd
}

func (a *app) runMetric(opts metricOptions) {
	const tag = "CLOUDWATCH"

	rt, ok := a.setup(tag)
	if !ok {
		return
	}

	if reason := validateMetricOptions(opts); reason != "" {
		a.fail(tag, &check.ConfigError{Reason: reason})
		return
	}

	dims, err := source.ParseDimensions(opts.dimensions)
	if err != nil {
		a.fail(tag, &check.ConfigError{Reason: err.Error()})
		return
	}

	cr, err := check.NewCriteria(check.ModeScalar, time.Duration(opts.period)*time.Second,
		opts.warning, opts.critical, opts.comparator)
	if err != nil {
		a.fail(tag, err)
		return
	}

	ctx := context.Background()
	awsCfg, err := source.LoadAWSConfig(ctx, rt.region, rt.profile, rt.log)
	if err != nil {
		a.fail(tag, err)
		return
	}

	src := source.NewMetricStatistics(cloudwatch.NewFromConfig(awsCfg), source.MetricQuery{
		Namespace:  opts.namespace,
		MetricName: opts.metricName,
		Statistic:  opts.statistic,
		Dimensions: dims,
	}, rt.log)

	probe := check.Probe{
		Tag:    tag,
		Mode:   check.ModeScalar,
		Source: src,
		Summarize: func(c classifier.Classification, _ check.Criteria) string {
			return fmt.Sprintf("%s: %s", opts.metricName, format.Value(c.Scalar.Value, c.Scalar.Unit))
		},
	}

	a.rep.Emit(tag, check.Run(ctx, probe, cr, rt.log))
}

func validateMetricOptions(opts metricOptions) string {
	switch {
	case opts.namespace == "":
		return "namespace is required"
	case opts.metricName == "":
		return "metric is required"
	case !opts.warningSet || !opts.criticalSet:
		return "warning and critical thresholds are required"
	case opts.comparator == "":
		return "comparator is required"
	case !slices.Contains(source.ValidStatistics, opts.statistic):
		return fmt.Sprintf("invalid statistic %q (want one of SampleCount, Average, Sum, Minimum, Maximum)", opts.statistic)
	}
	return ""
}
