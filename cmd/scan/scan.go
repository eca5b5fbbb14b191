package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/a11yscan/cmd/version"
	"github.com/scan-io-git/a11yscan/internal/cmd"
	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/logger"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	Rules      string
	Format     string
	OutputPath string
	Threads    int
	Changed    bool
	Base       string
	FailOn     string
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scan the current directory
  a11yscan scan

  # Scan two folders with four concurrent workers
  a11yscan scan -j 4 ./src ./public

  # Run only selected rules and write a SARIF report
  a11yscan scan --rules img-alt,form-label --format sarif --output a11y.sarif ./src

  # Scan files changed in the worktree and on the branch since it forked from main
  a11yscan scan --changed --base main

  # Report warnings without failing the build
  a11yscan scan --fail-on none`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--rules LIST] [--format/-f FORMAT] [--output/-o PATH] [-j THREADS] [--changed] [--base REF] [--fail-on LEVEL] [PATH...]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scan markup and component files for accessibility issues",
	Long: `Scan walks the given paths (the current directory by default), checks every HTML, JSX and TSX
file against the accessibility rules and prints a report. The exit code is 1 when an issue at or above
the --fail-on severity was found.`,
	RunE: runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(c *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(scanOptions, err, errors.ExitUsage)
	}
	format := report.Format(config.SetThen(scanOptions.Format, config.GetFormat(AppConfig)))
	threshold, failing, err := cmd.ParseThreshold(config.SetThen(scanOptions.FailOn, config.GetFailOn(AppConfig)))
	if err != nil {
		return errors.NewCommandError(scanOptions, err, errors.ExitUsage)
	}

	pipeline, err := cmd.NewPipeline(AppConfig, cmd.ScanOptions{
		Roots:   args,
		Rules:   scanOptions.Rules,
		Threads: scanOptions.Threads,
		Changed: scanOptions.Changed,
		Base:    scanOptions.Base,
	}, logger)
	if err != nil {
		logger.Error("failed to prepare scan", "error", err)
		return errors.NewCommandError(scanOptions, err, errors.ExitUsage)
	}

	results, err := pipeline.Run(c.Context())
	if err != nil {
		logger.Error("scan failed", "error", err)
		return errors.NewCommandError(scanOptions, err, errors.ExitFindings)
	}

	rep := pipeline.Report(results, version.CoreVersion)
	if err := cmd.WriteReport(c.OutOrStdout(), format, scanOptions.OutputPath, rep); err != nil {
		logger.Error("failed to write report", "error", err)
		return errors.NewCommandError(scanOptions, err, errors.ExitFindings)
	}

	if failing {
		if n := cmd.CountFailing(results, threshold); n > 0 {
			return errors.NewCommandError(scanOptions, fmt.Errorf("%d issues at or above %s severity", n, threshold), errors.ExitFindings)
		}
	}

	logger.Debug("scan command completed successfully")
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVar(&scanOptions.Rules, "rules", "", "Comma separated list of rule ids to run. Overrides the rules section of the config.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "", "Report format: text, json, sarif or html.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the report file. The report is printed to stdout by default.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 0, "Number of files scanned concurrently.")
	ScanCmd.Flags().BoolVar(&scanOptions.Changed, "changed", false, "Scan only files changed in the git worktree.")
	ScanCmd.Flags().StringVar(&scanOptions.Base, "base", "", "With --changed, also scan files changed since the branch forked from this ref.")
	ScanCmd.Flags().StringVar(&scanOptions.FailOn, "fail-on", "", "Lowest severity that makes the command fail: error, warning or none.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
