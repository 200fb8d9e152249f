package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela2-sub008/internal/cli"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage monthly category budgets",
	}

	cmd.AddCommand(budgetsListCmd())
	cmd.AddCommand(budgetsSetCmd())
	return cmd
}

func budgetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show budgets and month-to-date spend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Println(`No budgets configured. Set one with "dividela budgets set <category> <limit>".`)
				return nil
			}

			fmt.Println(cli.FormatTitle("Budgets"))
			for _, b := range budgets {
				status, err := store.GetBudgetStatus(ctx, b.CategoryID)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("  %-16s $%8.2f of $%8.2f", b.CategoryName, status.Spent, status.Limit)
				if status.Remaining() < 0 {
					line += "  " + cli.FormatWarning("over budget")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func budgetsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <monthly-limit>",
		Short: "Set a category's monthly limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid limit %q", args[1])
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}
			if category == nil {
				return fmt.Errorf("unknown category %q", args[0])
			}

			if err := store.SetBudget(ctx, category.ID, limit); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget for %s set to $%.2f/month", category.Name, limit)))
			return nil
		},
	}
}
