// Package dispatch orchestrates the chat pipeline: it routes raw text
// through the classifier and fuzzy resolver, drives the multi-turn state
// machine, and invokes the expense and budget collaborators.
package dispatch

import (
	"context"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// ExpenseStore is the expense mutation and query API the dispatcher
// executes against. Implemented by storage.SQLiteStorage.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id int64, update model.ExpenseUpdate) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error)
	ListExpenses(ctx context.Context, limit int) ([]model.Expense, error)
	GetBalance(ctx context.Context) (*model.Balance, error)
	SettleExpenses(ctx context.Context) (int64, error)
}

// BudgetReader answers budget status questions. Implemented by
// storage.SQLiteStorage.
type BudgetReader interface {
	GetBudgetStatus(ctx context.Context, categoryID int) (*model.BudgetStatus, error)
	GetOverallBudgetStatus(ctx context.Context) (*model.BudgetStatus, error)
}

// Response is the single result of a dispatch call. Text is ready to
// render; the remaining fields are the structured payload. Pending is
// non-nil only while a multi-turn exchange is in flight.
type Response struct {
	Pending  *model.PendingInteraction
	Text     string
	Warning  string
	Entities model.EntitySet
	Intent   model.Intent
	Success  bool
}
