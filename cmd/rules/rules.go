package rules

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/a11yscan/internal/cmd"
	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/logger"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/internal/rules"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

// RunOptionsRules holds the arguments for the rules command.
type RunOptionsRules struct {
	JSON bool
	All  bool
}

var (
	AppConfig         *config.Config
	rulesOptions      RunOptionsRules
	exampleRulesUsage = `  # List the rules enabled by the current configuration
  a11yscan rules

  # List every built-in rule as JSON
  a11yscan rules --all --json`
)

// RulesCmd represents the rules command.
var RulesCmd = &cobra.Command{
	Use:                   "rules [--all] [--json]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRulesUsage,
	Short:                 "List the accessibility rules",
	Args:                  cobra.NoArgs,
	RunE:                  runRulesCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runRulesCommand(c *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-rules")

	var reg *rules.Registry
	if rulesOptions.All {
		reg = rules.Default(rules.Options{})
	} else {
		var err error
		if reg, err = cmd.BuildRegistry(AppConfig, ""); err != nil {
			logger.Error("failed to select rules", "error", err)
			return errors.NewCommandError(rulesOptions, err, errors.ExitUsage)
		}
	}

	if err := report.WriteRules(c.OutOrStdout(), reg.Rules(), rulesOptions.JSON); err != nil {
		return errors.NewCommandError(rulesOptions, err, errors.ExitFindings)
	}
	return nil
}

func init() {
	RulesCmd.Flags().BoolVar(&rulesOptions.JSON, "json", false, "Print the rules as JSON.")
	RulesCmd.Flags().BoolVar(&rulesOptions.All, "all", false, "List every built-in rule, ignoring the rules section of the config.")
	RulesCmd.Flags().BoolP("help", "h", false, "Show help for the rules command.")
}
