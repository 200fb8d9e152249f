// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *int
	Unsettled  bool
	Limit      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id int64, update model.ExpenseUpdate) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error)
	ListExpenses(ctx context.Context, limit int) ([]model.Expense, error)
	GetExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	GetBalance(ctx context.Context) (*model.Balance, error)
	SettleExpenses(ctx context.Context) (int64, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	RenameCategory(ctx context.Context, id int, newName string) error
	DeactivateCategory(ctx context.Context, id int) error

	// Budget operations
	SetBudget(ctx context.Context, categoryID int, monthlyLimit float64) error
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	GetBudgetStatus(ctx context.Context, categoryID int) (*model.BudgetStatus, error)
	GetOverallBudgetStatus(ctx context.Context) (*model.BudgetStatus, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
