// awscheck probes AWS management APIs for a monitoring supervisor. Each
// subcommand runs one check, compares what it finds against operator
// thresholds, and reports the outcome as a single status line on stdout
// plus the matching exit code.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/setevik/awscheck/internal/check"
	"github.com/setevik/awscheck/internal/config"
	"github.com/setevik/awscheck/internal/reporter"
	"github.com/setevik/awscheck/internal/verdict"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Only usage errors land here. Check failures of every other kind
		// exit through the reporter with an UNKNOWN verdict.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(verdict.Unknown.ExitCode())
	}
}

// app carries the persistent flag values and the plumbing shared by all
// subcommands.
type app struct {
	configPath string
	region     string
	profile    string
	verbosity  int

	rep *reporter.Reporter
}

func newRootCmd() *cobra.Command {
	a := &app{rep: reporter.New()}

	cmd := &cobra.Command{
		Use:   "awscheck",
		Short: "Nagios-style checks against AWS management APIs",
		Long: `awscheck runs one-shot checks against AWS management APIs and reports
the result the way a Nagios/Icinga supervisor expects: one status line on
stdout and an exit code of 0 (OK), 1 (WARNING), 2 (CRITICAL) or 3 (UNKNOWN).

stdout carries nothing but the status line; diagnostics go to stderr.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to config file")
	pf.StringVar(&a.region, "region", "", "AWS region (falls back to [aws].region)")
	pf.StringVar(&a.profile, "profile", "", "AWS shared-config profile")
	pf.CountVarP(&a.verbosity, "verbose", "v", "increase stderr diagnostics (-v info, -vv debug)")

	cmd.AddCommand(
		newBackupCmd(a),
		newMetricCmd(a),
		newGuardDutyCmd(a),
		newAlarmCmd(a),
	)
	return cmd
}

// runtime is the resolved environment a check needs before it can build
// its source.
type runtime struct {
	cfg     *config.Config
	log     *slog.Logger
	region  string
	profile string
}

// setup loads configuration and builds the run logger. On failure it emits
// an UNKNOWN verdict under the probe's tag; the caller just returns.
func (a *app) setup(tag string) (*runtime, bool) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.fail(tag, err)
		return nil, false
	}

	log := newLogger(cfg.Log.Level, a.verbosity)

	region := a.region
	if region == "" {
		region = cfg.AWS.Region
	}
	if region == "" {
		a.fail(tag, &check.ConfigError{Reason: "AWS region not set (use --region or [aws].region)"})
		return nil, false
	}

	profile := a.profile
	if profile == "" {
		profile = cfg.AWS.Profile
	}

	log.Info("check starting", "tag", tag, "region", region, "version", version)
	return &runtime{cfg: cfg, log: log, region: region, profile: profile}, true
}

// fail reports a pre-flight failure as an UNKNOWN verdict.
func (a *app) fail(tag string, err error) {
	a.rep.Emit(tag, verdict.Unknownf(err))
}

// newLogger builds the run logger: a text handler on stderr, tagged with a
// fresh run ID so overlapping scheduler invocations can be told apart.
// Verbosity flags override the configured level; the default keeps runs
// silent short of errors.
func newLogger(level string, verbosity int) *slog.Logger {
	var logLevel slog.Level
	switch {
	case verbosity >= 2:
		logLevel = slog.LevelDebug
	case verbosity == 1:
		logLevel = slog.LevelInfo
	default:
		switch level {
		case "debug":
			logLevel = slog.LevelDebug
		case "info":
			logLevel = slog.LevelInfo
		case "warn":
			logLevel = slog.LevelWarn
		default:
			logLevel = slog.LevelError
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler).With("run_id", uuid.NewString())
}
