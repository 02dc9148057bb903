package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/log"
)

var (
	version = "dev"

	// Set by the root PersistentPreRunE.
	cfg    *config.Config
	logger *log.Logger

	rootCmd = &cobra.Command{
		Use:               "spendwise",
		Short:             "Personal expense ledger with category charts and spending insights",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
		RunE:              runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(summarizeCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := cli.GracefulShutdown(context.Background(), log.Wrap(nil, log.ComponentApp))
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger = cli.SetupLogger(level)

	var err error
	cfg, err = cli.LoadAndValidateConfig(logger)
	return err
}
