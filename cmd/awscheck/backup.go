package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/backup"
	backuptypes "github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/spf13/cobra"

	"github.com/setevik/awscheck/internal/check"
	"github.com/setevik/awscheck/internal/classifier"
	"github.com/setevik/awscheck/internal/format"
	"github.com/setevik/awscheck/internal/source"
)

// backupResourceTypes are the resource type filters AWS Backup accepts.
var backupResourceTypes = []string{"EBS", "SGW", "RDS", "DDB", "EFS"}

type backupOptions struct {
	resourceARN  string
	resourceType string
	vault        string
	period       int
	warning      int
	critical     int
}

func newBackupCmd(a *app) *cobra.Command {
	var opts backupOptions

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Check AWS Backup job results",
		Long: `Counts AWS Backup jobs created inside the look-back window by state and
escalates when the number of FAILED jobs exceeds the thresholds.`,
		Run: func(*cobra.Command, []string) { a.runBackup(opts) },
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.resourceARN, "resource-arn", "", "only jobs protecting this resource ARN")
	fl.StringVar(&opts.resourceType, "resource-type", "", "only jobs for one resource type (EBS, SGW, RDS, DDB, EFS)")
	fl.StringVar(&opts.vault, "vault", "", "only jobs in this backup vault")
	fl.IntVarP(&opts.period, "period", "P", 24, "look-back window in hours")
	fl.IntVarP(&opts.warning, "warning", "w", 0, "WARNING when failed jobs exceed this count")
	fl.IntVarP(&opts.critical, "critical", "c", 0, "CRITICAL when failed jobs exceed this count")

	return cmd
}

func (a *app) runBackup(opts backupOptions) {
	const tag = "AWS-BACKUP"

	rt, ok := a.setup(tag)
	if !ok {
		return
	}

	if opts.resourceType != "" && !slices.Contains(backupResourceTypes, opts.resourceType) {
		a.fail(tag, &check.ConfigError{
			Reason: fmt.Sprintf("invalid resource type %q (want one of EBS, SGW, RDS, DDB, EFS)", opts.resourceType),
		})
		return
	}

	cr, err := check.NewCriteria(check.ModeCount, time.Duration(opts.period)*time.Hour,
		float64(opts.warning), float64(opts.critical), "")
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

	src := source.NewBackupJobs(backup.NewFromConfig(awsCfg), source.BackupFilters{
		ResourceARN:  opts.resourceARN,
		ResourceType: opts.resourceType,
		VaultName:    opts.vault,
	}, rt.log)

	probe := check.Probe{
		Tag:         tag,
		Mode:        check.ModeCount,
		Source:      src,
		StateBucket: string(backuptypes.BackupJobStateFailed),
		Summarize: func(c classifier.Classification, cr check.Criteria) string {
			return fmt.Sprintf("%s in last %s", format.Counts(c.Buckets), format.Window(cr.Window))
		},
	}

	a.rep.Emit(tag, check.Run(ctx, probe, cr, rt.log))
}
