package source

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/backup/types"
)

// BackupAPI is the slice of the AWS Backup client used by BackupJobs.
// Tests substitute a fake; production passes *backup.Client.
type BackupAPI interface {
	ListBackupJobs(ctx context.Context, params *backup.ListBackupJobsInput, optFns ...func(*backup.Options)) (*backup.ListBackupJobsOutput, error)
}

// BackupFilters narrows which backup jobs are listed. Filtering happens
// server-side; zero fields are omitted from the request.
type BackupFilters struct {
	ResourceARN  string
	ResourceType string
	VaultName    string
}

// BackupJobs fetches AWS Backup job records created inside the check window.
type BackupJobs struct {
	client  BackupAPI
	filters BackupFilters
	log     *slog.Logger
}

// NewBackupJobs creates a BackupJobs source over an AWS Backup client.
func NewBackupJobs(client BackupAPI, filters BackupFilters, log *slog.Logger) *BackupJobs {
	return &BackupJobs{client: client, filters: filters, log: log}
}

// Fetch lists backup jobs created at or after the window start, following
// pagination until the service stops returning a continuation token.
func (s *BackupJobs) Fetch(ctx context.Context, w Window) ([]Record, error) {
	const op = "list backup jobs"

	in := &backup.ListBackupJobsInput{
		// 1000 is the ListBackupJobs maximum page size.
		MaxResults:     aws.Int32(1000),
		ByCreatedAfter: aws.Time(w.Since),
	}
	if s.filters.ResourceARN != "" {
		in.ByResourceArn = aws.String(s.filters.ResourceARN)
	}
	if s.filters.ResourceType != "" {
		in.ByResourceType = aws.String(s.filters.ResourceType)
	}
	if s.filters.VaultName != "" {
		in.ByBackupVaultName = aws.String(s.filters.VaultName)
	}

	var records []Record
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, errf(op, errTooManyPages)
		}

		out, err := s.client.ListBackupJobs(ctx, in)
		if err != nil {
			return nil, errf(op, err)
		}

		s.log.Debug("backup job page fetched", "page", page, "jobs", len(out.BackupJobs))
		for _, job := range out.BackupJobs {
			records = append(records, backupRecord(job))
		}

		if !morePages(out.NextToken) {
			return records, nil
		}
		in.NextToken = out.NextToken
	}
}

func backupRecord(job types.BackupJob) Record {
	rec := Record{State: string(job.State)}
	if job.CreationDate != nil {
		rec.Timestamp = *job.CreationDate
	}
	return rec
}
