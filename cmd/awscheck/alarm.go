package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/spf13/cobra"

	"github.com/setevik/awscheck/internal/check"
	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/format"
	"github.com/setevik/awscheck/internal/source"
)

type alarmOptions struct {
	prefix   string
	warning  int
	critical int
}

func newAlarmCmd(a *app) *cobra.Command {
	var opts alarmOptions

	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Check CloudWatch alarm states",
		Long: `Counts CloudWatch alarms by their current state and escalates when the
number of alarms in the ALARM state exceeds the thresholds.`,
		Run: func(*cobra.Command, []string) { a.runAlarm(opts) },
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.prefix, "alarm-prefix", "", "only alarms whose name starts with this prefix")
	fl.IntVarP(&opts.warning, "warning", "w", 0, "WARNING when alarms in ALARM exceed this count")
	fl.IntVarP(&opts.critical, "critical", "c", 0, "CRITICAL when alarms in ALARM exceed this count")

	return cmd
}

func (a *app) runAlarm(opts alarmOptions) {
	const tag = "CLOUDWATCH-ALARM"

	rt, ok := a.setup(tag)
	if !ok {
		return
	}

	cr, err := check.NewCriteria(check.ModeCount, 0, float64(opts.warning), float64(opts.critical), "")
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

	src := source.NewAlarmStates(cloudwatch.NewFromConfig(awsCfg), opts.prefix, rt.log)

	probe := check.Probe{
		Tag:         tag,
		Mode:        check.ModeCount,
		Source:      src,
		StateBucket: string(cwtypes.StateValueAlarm),
		Summarize: func(c classifier.Classification, _ check.Criteria) string {
			if len(c.Buckets) == 0 {
				return "no alarms found"
			}
			return format.Counts(c.Buckets)
		},
	}

	a.rep.Emit(tag, check.Run(ctx, probe, cr, rt.log))
}
