package source

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// LoadAWSConfig resolves client configuration for the given region and
// optional shared-config profile, using the SDK's default credential chain.
// Failures come back as a *Error so they degrade to UNKNOWN like any other
// source failure.
func LoadAWSConfig(ctx context.Context, region, profile string, log *slog.Logger) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errf("load AWS config", err)
	}

	log.Debug("AWS client configuration loaded", "region", region, "profile", profile)
	return cfg, nil
}
