package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/spf13/cobra"

	"github.com/setevik/awscheck/internal/check"
	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/config"
	"github.com/setevik/awscheck/internal/format"
	"github.com/setevik/awscheck/internal/source"
)

type guardDutyOptions struct {
	period       int
	warning      float64
	critical     float64
	excludeTypes string
}

func newGuardDutyCmd(a *app) *cobra.Command {
	var opts guardDutyOptions

	cmd := &cobra.Command{
		Use:   "guardduty",
		Short: "Check GuardDuty findings by severity",
		Long: `Fetches GuardDuty findings updated inside the look-back window and bands
them by severity: CRITICAL when any finding scores above the critical
threshold, WARNING when any scores above the warning threshold. Archived
findings and findings hit by a configured noise filter are ignored.`,
		Run: func(*cobra.Command, []string) { a.runGuardDuty(opts) },
	}

	fl := cmd.Flags()
	fl.IntVarP(&opts.period, "period", "P", 48, "look-back window in hours")
	fl.Float64VarP(&opts.warning, "warning", "w", 4, "WARNING when a finding's severity exceeds this")
	fl.Float64VarP(&opts.critical, "critical", "c", 7, "CRITICAL when a finding's severity exceeds this")
	fl.StringVar(&opts.excludeTypes, "finding-type-exclude", "", "comma-separated finding types to exclude server-side")

	return cmd
}

func (a *app) runGuardDuty(opts guardDutyOptions) {
	const tag = "AWS-GUARDDUTY"

	rt, ok := a.setup(tag)
	if !ok {
		return
	}

	cr, err := check.NewCriteria(check.ModeBands, time.Duration(opts.period)*time.Hour,
		opts.warning, opts.critical, "")
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

	var excludes []string
	if opts.excludeTypes != "" {
		excludes = strings.Split(opts.excludeTypes, ",")
	}

	src := source.NewFindings(guardduty.NewFromConfig(awsCfg), opts.warning, excludes, rt.log)

	probe := check.Probe{
		Tag:     tag,
		Mode:    check.ModeBands,
		Source:  src,
		Exclude: noiseExcluder(rt.cfg.GuardDuty.NoiseFilters),
		Summarize: func(c classifier.Classification, cr check.Criteria) string {
			return fmt.Sprintf("Critical(>%g):%d Warning(>%g):%d in last %s",
				cr.Critical, c.Buckets[classifier.BucketCritical],
				cr.Warning, c.Buckets[classifier.BucketWarning],
				format.Window(cr.Window))
		},
	}

	a.rep.Emit(tag, check.Run(ctx, probe, cr, rt.log))
}

// noiseExcluder adapts the configured noise filters into the classifier's
// exclusion predicate.
func noiseExcluder(filters []config.NoiseFilter) func(source.Record) bool {
	if len(filters) == 0 {
		return nil
	}
	return func(rec source.Record) bool {
		for _, f := range filters {
			if f.Match(rec.Type, rec.ConnectionDirection) {
				return true
			}
		}
		return false
	}
}
