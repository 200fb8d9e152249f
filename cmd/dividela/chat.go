package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miguelangat/dividela2-sub008/internal/cli"
	"github.com/miguelangat/dividela2-sub008/internal/conversation"
	"github.com/miguelangat/dividela2-sub008/internal/dispatch"
	"github.com/miguelangat/dividela2-sub008/internal/storage"
	"github.com/miguelangat/dividela2-sub008/internal/tui"
)

// localConversationID names the single conversation a CLI session holds.
const localConversationID = "local"

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat about expenses in plain language",
		Long: `Start an interactive chat session. Type things like:

  add $50 for groceries
  spent 120 on utilities yesterday, 70/30
  what's my food budget
  who owes who
  settle up`,
		RunE: runChat,
	}

	cmd.Flags().Bool("plain", false, "plain line-based mode instead of the full-screen UI")
	return cmd
}

func newDispatcher(store *storage.SQLiteStorage) (*dispatch.Dispatcher, error) {
	tracker := conversation.NewTracker()
	cfg := dispatch.Config{
		FuzzyFloor:      viper.GetFloat64("matching.floor"),
		SelectionDelta:  viper.GetFloat64("matching.selection_delta"),
		BudgetWarnRatio: viper.GetFloat64("budgets.warn_ratio"),
		Payer:           viper.GetString("partners.payer"),
	}
	return dispatch.New(store, store, tracker, cfg)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	dispatcher, err := newDispatcher(store)
	if err != nil {
		return err
	}

	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		return runPlainChat(ctx, dispatcher, store)
	}
	return tui.Run(dispatcher, store, localConversationID)
}

// runPlainChat is a line-based loop for terminals where the full-screen
// UI is unwanted (pipes, scripts, screen readers).
func runPlainChat(ctx context.Context, dispatcher *dispatch.Dispatcher, store *storage.SQLiteStorage) error {
	fmt.Println(cli.FormatTitle("dividela chat"))
	fmt.Println("Tell me about an expense, or type \"quit\" to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(cli.FormatPrompt("you"))
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		categories, err := store.GetCategories(ctx)
		if err != nil {
			fmt.Println(cli.FormatError(err.Error()))
			continue
		}

		response := dispatcher.Dispatch(ctx, localConversationID, text, categories)
		if response.Success {
			fmt.Println(response.Text)
		} else {
			fmt.Println(cli.FormatError(response.Text))
		}
		if response.Warning != "" {
			fmt.Println(cli.FormatWarning(response.Warning))
		}
	}
	return scanner.Err()
}
