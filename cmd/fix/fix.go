package fix

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/a11yscan/cmd/version"
	"github.com/scan-io-git/a11yscan/internal/cmd"
	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/fixer"
	"github.com/scan-io-git/a11yscan/internal/logger"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

// RunOptionsFix holds the arguments for the fix command.
type RunOptionsFix struct {
	Rules   string
	Threads int
	Changed bool
	Base    string
	Agent   string
	Timeout time.Duration
	NoBatch bool
	DryRun  bool
}

// Global variables for configuration and command arguments
var (
	AppConfig       *config.Config
	fixOptions      RunOptionsFix
	exampleFixUsage = `  # Fix every issue found in the current directory
  a11yscan fix

  # Show what would be sent to the fixing agent without running it
  a11yscan fix --dry-run ./src

  # Fix only missing alternative text, one agent call per issue
  a11yscan fix --rules img-alt --no-batch ./src

  # Fix issues in changed files with a custom agent and a longer timeout
  a11yscan fix --changed --agent /opt/agents/fixer --timeout 5m`
)

// FixCmd represents the fix command.
var FixCmd = &cobra.Command{
	Use:                   "fix [--rules LIST] [-j THREADS] [--changed] [--base REF] [--agent COMMAND] [--timeout DURATION] [--no-batch] [--dry-run] [PATH...]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixUsage,
	Short:                 "Scan for accessibility issues and ask the fixing agent to repair them",
	Long: `Fix scans the given paths like the scan command and hands every file with issues to an external
fixing agent. All issues of a file are sent in one call first. When that call fails, every issue is
retried on its own. Each call is killed after --timeout. The exit code is 1 when the agent is not
available or any issue could not be fixed.`,
	RunE: runFixCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFixCommand executes the fix command.
func runFixCommand(c *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-fix")

	if err := validateFixArgs(&fixOptions, args); err != nil {
		logger.Error("invalid fix arguments", "error", err)
		return errors.NewCommandError(fixOptions, err, errors.ExitUsage)
	}

	pipeline, err := cmd.NewPipeline(AppConfig, cmd.ScanOptions{
		Roots:   args,
		Rules:   fixOptions.Rules,
		Threads: fixOptions.Threads,
		Changed: fixOptions.Changed,
		Base:    fixOptions.Base,
	}, logger)
	if err != nil {
		logger.Error("failed to prepare scan", "error", err)
		return errors.NewCommandError(fixOptions, err, errors.ExitUsage)
	}

	results, err := pipeline.Run(c.Context())
	if err != nil {
		logger.Error("scan failed", "error", err)
		return errors.NewCommandError(fixOptions, err, errors.ExitFindings)
	}

	rep := pipeline.Report(results, version.CoreVersion)
	if err := report.WriteText(c.OutOrStdout(), rep, report.ColorEnabled(c.OutOrStdout())); err != nil {
		logger.Error("failed to write report", "error", err)
		return errors.NewCommandError(fixOptions, err, errors.ExitFindings)
	}

	targets := engine.WithIssues(results)
	if len(targets) == 0 {
		fmt.Fprintln(c.ErrOrStderr(), "No accessibility issues found, nothing to fix")
		return nil
	}

	base, _ := os.Getwd()
	printer := report.NewEventPrinter(c.ErrOrStderr(), report.ColorEnabled(c.ErrOrStderr()), base)
	orchestrator := fixer.New(fixer.NewExecRunner(logger), fixer.Options{
		Agent:  agentConfig(AppConfig, fixOptions),
		Batch:  config.GetBatch(AppConfig) && !fixOptions.NoBatch,
		DryRun: fixOptions.DryRun,
	}, logger, printer.Print)

	summary, err := orchestrator.Fix(c.Context(), targets)
	printer.PrintSummary(summary)
	if err != nil {
		return errors.NewCommandError(fixOptions, err, errors.ExitFindings)
	}
	if !summary.OK() {
		return errors.NewCommandError(fixOptions, fmt.Errorf("%d of %d issues could not be fixed", summary.Failed, summary.Fixed+summary.Failed), errors.ExitFindings)
	}

	logger.Debug("fix command completed successfully", "run_id", summary.RunID)
	return nil
}

// agentConfig merges the agent section of the configuration with command flags.
func agentConfig(cfg *config.Config, options RunOptionsFix) fixer.AgentConfig {
	var agent config.Agent
	if cfg != nil {
		agent = cfg.Agent
	}
	return fixer.AgentConfig{
		Command:      config.SetThen(options.Agent, agent.Command),
		SearchPaths:  agent.SearchPaths,
		Args:         agent.Args,
		VersionArgs:  agent.VersionArgs,
		ProbeTimeout: agent.ProbeTimeout,
		Timeout:      config.SetThen(options.Timeout, config.GetAgentTimeout(cfg)),
		WorkDir:      agent.WorkDir,
	}
}

// Initialize flags for the fix command.
func init() {
	FixCmd.Flags().StringVar(&fixOptions.Rules, "rules", "", "Comma separated list of rule ids to fix. Overrides the rules section of the config.")
	FixCmd.Flags().IntVarP(&fixOptions.Threads, "threads", "j", 0, "Number of files scanned concurrently.")
	FixCmd.Flags().BoolVar(&fixOptions.Changed, "changed", false, "Fix only files changed in the git worktree.")
	FixCmd.Flags().StringVar(&fixOptions.Base, "base", "", "With --changed, also fix files changed since the branch forked from this ref.")
	FixCmd.Flags().StringVar(&fixOptions.Agent, "agent", "", "Name or path of the fixing agent executable.")
	FixCmd.Flags().DurationVar(&fixOptions.Timeout, "timeout", 0, "Time limit for every agent call, e.g. 90s or 5m.")
	FixCmd.Flags().BoolVar(&fixOptions.NoBatch, "no-batch", false, "Send every issue in its own agent call.")
	FixCmd.Flags().BoolVar(&fixOptions.DryRun, "dry-run", false, "List the issues that would be sent to the agent without running it.")
	FixCmd.Flags().BoolP("help", "h", false, "Show help for the fix command.")
}
