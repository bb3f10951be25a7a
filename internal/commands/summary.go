package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/fields"
	"github.com/expenso-dev/expenso/internal/ledger"
)

func newSummaryCommand() *cobra.Command {
	var repoDir, month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spending per category and budget remaining for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			return runSummary(r, month)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), default current month")

	return cmd
}

func runSummary(r *repo, month string) error {
	m := fields.Today()
	if month != "" {
		var err error
		if m, err = ledger.ParseMonth(month); err != nil {
			return err
		}
	}

	sum, err := r.in.Ledger.MonthTotal(m.Year(), int(m.Month()))
	if err != nil {
		return err
	}
	budget, err := r.cfg.Budget.MonthlyAmount()
	if err != nil {
		return err
	}

	fmt.Printf("Summary for %s\n", m.Format(ledger.MonthFormat))
	for _, ct := range sum.ByCategory {
		fmt.Printf("  %-13s %12s  (%d)\n", ct.Category.DisplayName(), ct.Amount.StringFixed(2), ct.Count)
	}
	fmt.Printf("  %-13s %12s  (%d)\n", "Total", sum.Total.StringFixed(2), sum.Count)

	if left, ok := ledger.Remaining(budget, sum.Total); ok {
		fmt.Printf("  %-13s %12s\n", "Budget", budget.StringFixed(2))
		fmt.Printf("  %-13s %12s\n", "Remaining", left.StringFixed(2))
	}
	return nil
}
