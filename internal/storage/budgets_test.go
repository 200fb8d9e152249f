package storage

import (
	"context"
	"testing"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thisMonthExpense dates the expense inside the current month so it
// counts toward month-to-date spend.
func thisMonthExpense(amount float64, categoryID int) *model.Expense {
	return &model.Expense{
		Amount:     amount,
		CategoryID: categoryID,
		Date:       monthStart(time.Now()).Add(24 * time.Hour),
		PaidBy:     "me",
		Split:      model.DefaultSplit(),
	}
}

func TestSetBudget_CreateAndReplace(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	category, err := store.GetCategoryByName(ctx, "Groceries")
	require.NoError(t, err)
	require.NotNil(t, category)

	require.NoError(t, store.SetBudget(ctx, category.ID, 300))
	require.NoError(t, store.SetBudget(ctx, category.ID, 450))

	budgets, err := store.GetBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, category.ID, budgets[0].CategoryID)
	assert.Equal(t, "Groceries", budgets[0].CategoryName)
	assert.InDelta(t, 450.0, budgets[0].Limit, 0.001)
}

func TestSetBudget_Invalid(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	category, err := store.GetCategoryByName(ctx, "Groceries")
	require.NoError(t, err)

	assert.ErrorIs(t, store.SetBudget(ctx, category.ID, 0), ErrInvalidBudget)
	assert.ErrorIs(t, store.SetBudget(ctx, category.ID, -10), ErrInvalidBudget)
	assert.ErrorIs(t, store.SetBudget(ctx, 99999, 100), ErrNotFound)
}

func TestGetBudgetStatus_SpendAgainstLimit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	category, err := store.GetCategoryByName(ctx, "Groceries")
	require.NoError(t, err)
	require.NoError(t, store.SetBudget(ctx, category.ID, 300))

	_, err = store.CreateExpense(ctx, thisMonthExpense(80, category.ID))
	require.NoError(t, err)
	_, err = store.CreateExpense(ctx, thisMonthExpense(45, category.ID))
	require.NoError(t, err)

	// Spend in a previous month is excluded.
	old := thisMonthExpense(500, category.ID)
	old.Date = monthStart(time.Now()).AddDate(0, -1, 5)
	_, err = store.CreateExpense(ctx, old)
	require.NoError(t, err)

	status, err := store.GetBudgetStatus(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", status.CategoryName)
	assert.InDelta(t, 125.0, status.Spent, 0.001)
	assert.InDelta(t, 300.0, status.Limit, 0.001)
	assert.InDelta(t, 175.0, status.Remaining(), 0.001)
	assert.True(t, status.HasLimit())
}

func TestGetBudgetStatus_NoLimitConfigured(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	category, err := store.GetCategoryByName(ctx, "Rent")
	require.NoError(t, err)

	_, err = store.CreateExpense(ctx, thisMonthExpense(900, category.ID))
	require.NoError(t, err)

	status, err := store.GetBudgetStatus(ctx, category.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900.0, status.Spent, 0.001)
	assert.False(t, status.HasLimit())
}

func TestGetBudgetStatus_MissingCategory(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetBudgetStatus(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOverallBudgetStatus(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	groceries, err := store.GetCategoryByName(ctx, "Groceries")
	require.NoError(t, err)
	rent, err := store.GetCategoryByName(ctx, "Rent")
	require.NoError(t, err)

	require.NoError(t, store.SetBudget(ctx, groceries.ID, 300))
	require.NoError(t, store.SetBudget(ctx, rent.ID, 1000))

	_, err = store.CreateExpense(ctx, thisMonthExpense(100, groceries.ID))
	require.NoError(t, err)
	_, err = store.CreateExpense(ctx, thisMonthExpense(950, rent.ID))
	require.NoError(t, err)
	// Uncategorized spend still counts toward the overall figure.
	_, err = store.CreateExpense(ctx, thisMonthExpense(25, 0))
	require.NoError(t, err)

	status, err := store.GetOverallBudgetStatus(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1075.0, status.Spent, 0.001)
	assert.InDelta(t, 1300.0, status.Limit, 0.001)
}
