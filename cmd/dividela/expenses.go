package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela2-sub008/internal/cli"
	"github.com/miguelangat/dividela2-sub008/internal/model"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Inspect recorded expenses",
	}

	cmd.AddCommand(expensesListCmd())
	cmd.AddCommand(expensesBalanceCmd())
	return cmd
}

func expensesListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx, limit)
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				fmt.Println("No expenses recorded yet.")
				return nil
			}

			fmt.Println(cli.FormatTitle("Expenses"))
			for _, e := range expenses {
				category := e.CategoryName
				if category == "" {
					category = model.UncategorizedName
				}
				settled := ""
				if e.SettledAt != nil {
					settled = "  (settled)"
				}
				fmt.Printf("  #%-4d %s  $%8.2f  %-16s %d/%d%s\n",
					e.ID, e.Date.Format("2006-01-02"), e.Amount, category,
					e.Split.PayerShare, e.Split.PartnerShare, settled)
			}
			return nil
		},
	}

	listCmd.Flags().IntP("limit", "n", 20, "maximum number of expenses to show")
	return listCmd
}

func expensesBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show who owes whom",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			balance, err := store.GetBalance(ctx)
			if err != nil {
				return err
			}

			if balance.IsSettled() {
				fmt.Println(cli.FormatSuccess("All settled up."))
				return nil
			}
			fmt.Printf("%s owes %s $%.2f\n", balance.Owes, balance.OwedTo, balance.Amount)
			return nil
		},
	}
}
