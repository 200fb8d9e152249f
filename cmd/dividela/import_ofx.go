package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miguelangat/dividela2-sub008/internal/cli"
	"github.com/miguelangat/dividela2-sub008/internal/common"
	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/miguelangat/dividela2-sub008/internal/ofx"
)

func init() {
	importOFXCmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import shared expenses from OFX/QFX bank statements",
		Long: `Import debits from OFX or QFX (Quicken) files exported from your bank.
Each debit becomes an uncategorized expense with the default 50/50 split;
recategorize them afterwards in chat ("change it to groceries").

Examples:
  # Import a single statement
  dividela import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import everything in a directory
  dividela import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	importOFXCmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	rootCmd.AddCommand(importOFXCmd)
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}
	if len(allFiles) == 0 {
		return common.NewUserError("no files found to import", nil)
	}

	parser := ofx.NewParser(viper.GetString("partners.payer"))

	var allExpenses []model.Expense
	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		expenses, err := parser.ParseFile(f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}
		if len(expenses) == 0 {
			slog.Warn("No debits found in file", "file", filepath.Base(filePath))
			continue
		}
		allExpenses = append(allExpenses, expenses...)
	}
	if len(allExpenses) == 0 {
		return common.NewUserError("no importable expenses found", common.ErrNoTransactions)
	}

	if dryRun {
		fmt.Println(cli.FormatTitle("Dry run — nothing saved"))
		for _, e := range allExpenses {
			fmt.Printf("  %s  $%8.2f  %s\n", e.Date.Format("2006-01-02"), e.Amount, e.Description)
		}
		fmt.Printf("\n%d expense(s) would be imported.\n", len(allExpenses))
		return nil
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.NewOptions(len(allExpenses),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing expenses..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	imported := 0
	for i := range allExpenses {
		if _, err := store.CreateExpense(ctx, &allExpenses[i]); err != nil {
			slog.Error("Failed to save expense",
				"description", allExpenses[i].Description,
				"error", err)
		} else {
			imported++
		}
		_ = bar.Add(1)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d expense(s)", imported, len(allExpenses))))
	return nil
}
