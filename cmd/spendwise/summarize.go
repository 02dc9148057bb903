package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/insights"
)

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Ask the configured provider for a one-off spending summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.insights.Analyze(cmd.Context(), a.store.Transactions())
			switch {
			case errors.Is(err, insights.ErrNotEnoughData):
				return fmt.Errorf("at least %d expenses are needed for insights", insights.MinTransactions)
			case err != nil:
				logger.Debug("Summarize failed", "error", err)
				return errors.New(insights.FailureNotice)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			return nil
		},
	}
}
