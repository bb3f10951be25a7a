package commands

import (
	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/buildinfo"
	"github.com/expenso-dev/expenso/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "expenso",
		Short:   "Import bank statements and alert emails into a personal expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return err
			}
			globalLogLevel = logLevel
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(),
		newExpensesCommand(),
		newSummaryCommand(),
		newCategorizeCommand(),
		newWatchCommand(),
		newServeCommand(),
	)

	return rootCmd
}
