package watch

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/a11yscan/cmd/version"
	"github.com/scan-io-git/a11yscan/internal/cmd"
	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/logger"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/internal/watch"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

// RunOptionsWatch holds the arguments for the watch command.
type RunOptionsWatch struct {
	Rules   string
	Threads int
}

var (
	AppConfig         *config.Config
	watchOptions      RunOptionsWatch
	exampleWatchUsage = `  # Re-scan the current directory whenever a page or component changes
  a11yscan watch

  # Watch two folders and run only selected rules
  a11yscan watch --rules img-alt,button-name ./src ./public`
)

// WatchCmd represents the watch command.
var WatchCmd = &cobra.Command{
	Use:                   "watch [--rules LIST] [-j THREADS] [PATH...]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleWatchUsage,
	Short:                 "Scan continuously and print a fresh text report after every change",
	RunE:                  runWatchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runWatchCommand(c *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-watch")

	if watchOptions.Threads < 0 {
		return errors.NewUsageError(watchOptions, "the 'threads' flag must be a positive integer")
	}

	pipeline, err := cmd.NewPipeline(AppConfig, cmd.ScanOptions{
		Roots:   args,
		Rules:   watchOptions.Rules,
		Threads: watchOptions.Threads,
	}, logger)
	if err != nil {
		logger.Error("failed to prepare scan", "error", err)
		return errors.NewCommandError(watchOptions, err, errors.ExitUsage)
	}

	w, err := watch.New(pipeline.Roots(), pipeline.Finder, watch.DefaultDebounce, logger)
	if err != nil {
		logger.Error("failed to watch", "error", err)
		return errors.NewCommandError(watchOptions, err, errors.ExitUsage)
	}
	defer w.Close()

	out := c.OutOrStdout()
	rescan := func(ctx context.Context) {
		scanAndPrint(ctx, out, pipeline, logger)
	}
	rescan(c.Context())
	fmt.Fprintln(c.ErrOrStderr(), "Watching for changes, press Ctrl+C to stop")

	return w.Run(c.Context(), rescan)
}

// scanAndPrint runs one scan and prints the text report. Failures are logged so watching goes on.
func scanAndPrint(ctx context.Context, out io.Writer, pipeline *cmd.Pipeline, logger hclog.Logger) {
	results, err := pipeline.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("scan failed", "error", err)
		}
		return
	}
	rep := pipeline.Report(results, version.CoreVersion)
	if err := report.WriteText(out, rep, report.ColorEnabled(out)); err != nil {
		logger.Error("failed to write report", "error", err)
	}
}

func init() {
	WatchCmd.Flags().StringVar(&watchOptions.Rules, "rules", "", "Comma separated list of rule ids to run. Overrides the rules section of the config.")
	WatchCmd.Flags().IntVarP(&watchOptions.Threads, "threads", "j", 0, "Number of files scanned concurrently.")
	WatchCmd.Flags().BoolP("help", "h", false, "Show help for the watch command.")
}
