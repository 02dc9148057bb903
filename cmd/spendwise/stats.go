package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print today's and this month's totals with the category breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			ov := a.store.Overview()
			fmt.Fprintf(out, "Today:      %s\n", ov.Today.Display())
			fmt.Fprintf(out, "This month: %s\n", ov.Month.Display())
			fmt.Fprintf(out, "Expenses:   %d\n", ov.Count)

			slices := a.store.Breakdown()
			if len(slices) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "CATEGORY\tTOTAL\tSHARE\t")
			for _, s := range slices {
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t\n", s.Category, s.Total.Display(), s.Share*100)
			}
			return w.Flush()
		},
	}
}
