package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// mockExpenseStore is an in-memory ExpenseStore that records mutations and
// can be forced to fail.
type mockExpenseStore struct {
	expenses map[int64]*model.Expense
	balance  model.Balance

	failCreate  error
	failUpdate  error
	failDelete  error
	failBalance error
	failSettle  error

	deleted      []int64
	settledCount int64
	nextID       int64
	mu           sync.Mutex
}

func newMockExpenseStore() *mockExpenseStore {
	return &mockExpenseStore{expenses: make(map[int64]*model.Expense)}
}

func (m *mockExpenseStore) CreateExpense(_ context.Context, expense *model.Expense) (*model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	m.nextID++
	saved := *expense
	saved.ID = m.nextID
	m.expenses[saved.ID] = &saved
	return &saved, nil
}

func (m *mockExpenseStore) UpdateExpense(_ context.Context, id int64, update model.ExpenseUpdate) (*model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	expense, ok := m.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %d not found", id)
	}
	if update.Amount != nil {
		expense.Amount = *update.Amount
	}
	if update.Date != nil {
		expense.Date = *update.Date
	}
	if update.Split != nil {
		expense.Split = *update.Split
	}
	if update.CategoryID != nil {
		expense.CategoryID = *update.CategoryID
	}
	return expense, nil
}

func (m *mockExpenseStore) DeleteExpense(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	if _, ok := m.expenses[id]; !ok {
		return fmt.Errorf("expense %d not found", id)
	}
	delete(m.expenses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockExpenseStore) GetExpenseByID(_ context.Context, id int64) (*model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expense, ok := m.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %d not found", id)
	}
	return expense, nil
}

func (m *mockExpenseStore) ListExpenses(_ context.Context, limit int) ([]model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Expense
	for _, e := range m.expenses {
		if len(out) >= limit {
			break
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockExpenseStore) GetBalance(_ context.Context) (*model.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBalance != nil {
		return nil, m.failBalance
	}
	balance := m.balance
	return &balance, nil
}

func (m *mockExpenseStore) SettleExpenses(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSettle != nil {
		return 0, m.failSettle
	}
	m.settledCount = int64(len(m.expenses))
	m.balance = model.Balance{}
	return m.settledCount, nil
}

// seed inserts an expense directly, bypassing dispatch.
func (m *mockExpenseStore) seed(expense model.Expense) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	expense.ID = m.nextID
	m.expenses[expense.ID] = &expense
	return expense.ID
}

// mockBudgetReader serves canned budget statuses.
type mockBudgetReader struct {
	statuses map[int]*model.BudgetStatus
	overall  *model.BudgetStatus
	err      error
}

func newMockBudgetReader() *mockBudgetReader {
	return &mockBudgetReader{statuses: make(map[int]*model.BudgetStatus)}
}

func (m *mockBudgetReader) GetBudgetStatus(_ context.Context, categoryID int) (*model.BudgetStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if status, ok := m.statuses[categoryID]; ok {
		return status, nil
	}
	return &model.BudgetStatus{}, nil
}

func (m *mockBudgetReader) GetOverallBudgetStatus(_ context.Context) (*model.BudgetStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.overall != nil {
		return m.overall, nil
	}
	return &model.BudgetStatus{}, nil
}
