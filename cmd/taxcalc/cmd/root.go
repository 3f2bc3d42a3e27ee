package cmd

import (
	"fmt"
	"io"

	"tax-calculator/internal/config"
	"tax-calculator/internal/logger"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	GitCommit = "development"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "taxcalc",
		Short: "Tax and discount calculator",
		Long: `taxcalc derives base price, tax, discount, unit and total amounts
for a single line item.

Defaults for decimals and strategy come from CALC_DEFAULT_DECIMALS
and CALC_DEFAULT_STRATEGY; Kafka settings for "submit" from KAFKA_*.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose log output on stderr")

	root.AddCommand(newQuoteCmd(&verbose), newSubmitCmd(&verbose), newVersionCmd())
	return root
}

// Execute запускает CLI
func Execute() error {
	return newRootCmd().Execute()
}

// cliLogger пишет в stderr, чтобы не смешиваться с JSON в stdout
func cliLogger(cfg *config.Config, verbose bool, stderr io.Writer) *logger.Logger {
	logCfg := cfg.Logger
	logCfg.File = ""
	logCfg.Format = "text"
	logCfg.Level = "error"
	if verbose {
		logCfg.Level = "debug"
	}
	log := logger.New(&logCfg)
	log.SetOutput(stderr)
	return log
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxcalc v%s (%s)\n", Version, GitCommit)
		},
	}
}
