package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/id"
	"github.com/expenso-dev/expenso/internal/ledger"
	"github.com/expenso-dev/expenso/internal/model"
)

func newExpensesCommand() *cobra.Command {
	expensesCmd := &cobra.Command{
		Use:   "expenses",
		Short: "List and edit ledger expenses",
	}
	expensesCmd.AddCommand(newExpensesListCommand(), newExpensesDeleteCommand())
	return expensesCmd
}

func newExpensesListCommand() *cobra.Command {
	var repoDir, month, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			return runExpensesList(r.in.Ledger, month, category)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")

	return cmd
}

func runExpensesList(svc *ledger.Service, month, category string) error {
	expenses, err := svc.All()
	if err != nil {
		return err
	}
	if month != "" {
		m, err := ledger.ParseMonth(month)
		if err != nil {
			return err
		}
		expenses = ledger.InMonth(expenses, m.Year(), int(m.Month()))
	}
	if category != "" {
		expenses = ledger.InCategory(expenses, model.ParseCategory(category))
	}

	if len(expenses) == 0 {
		fmt.Println("No expenses.")
		return nil
	}
	for _, e := range expenses {
		fmt.Printf("%s  %s  %-13s %10s  %s\n",
			e.ID, e.Date.Format("2006-01-02"), e.Category.DisplayName(), e.Amount.StringFixed(2), e.Description)
	}
	fmt.Printf("%d expenses, total %s\n", len(expenses), ledger.Summarize(expenses).Total.StringFixed(2))
	return nil
}

func newExpensesDeleteCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			return runExpensesDelete(r.in.Ledger, args[0])
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func runExpensesDelete(svc *ledger.Service, expenseID string) error {
	if !id.Valid(expenseID) || id.Prefix(expenseID) != id.PrefixExpense {
		return fmt.Errorf("invalid expense id %q", expenseID)
	}
	if err := svc.Delete(expenseID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", expenseID)
	return nil
}
