package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/a11yscan/cmd/fix"
	"github.com/scan-io-git/a11yscan/cmd/rules"
	"github.com/scan-io-git/a11yscan/cmd/scan"
	"github.com/scan-io-git/a11yscan/cmd/version"
	"github.com/scan-io-git/a11yscan/cmd/watch"
	internalcmd "github.com/scan-io-git/a11yscan/internal/cmd"
	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

var (
	cfgFile   string
	configErr error
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "a11yscan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "a11yscan finds accessibility issues in markup and component sources.",
		Long: `a11yscan checks HTML documents and JSX/TSX components against WCAG based rules,
reports the issues it finds and can hand them to a coding agent to fix.
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return errors.NewCommandError(nil, configErr, errors.ExitUsage)
			}
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is %s)", config.DefaultConfigFile))
	rootCmd.SetGlobalNormalizationFunc(internalcmd.NormalizeFlagName)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.NewCommandError(nil, err, errors.ExitUsage)
	})

	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(fix.FixCmd)
	rootCmd.AddCommand(rules.RulesCmd)
	rootCmd.AddCommand(watch.WatchCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
// SIGINT and SIGTERM cancel the command context.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

func initConfig() {
	explicit := cfgFile != ""
	if !explicit {
		cfgFile = config.DefaultConfigFile
	}

	cfg, err := config.NewConfig(cfgFile, explicit)
	if err == nil {
		err = config.ValidateConfig(cfg)
	}
	if err != nil {
		configErr = fmt.Errorf("failed to load config file %q: %w", cfgFile, err)
		cfg = &config.Config{}
	}
	AppConfig = cfg

	scan.Init(AppConfig)
	fix.Init(AppConfig)
	rules.Init(AppConfig)
	watch.Init(AppConfig)
	version.Init(AppConfig)
}
