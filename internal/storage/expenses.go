package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/miguelangat/dividela2-sub008/internal/service"
)

// expenseColumns is the shared select list; every scan goes through
// scanExpense so the column order lives in exactly one place.
const expenseColumns = `
	e.id, e.amount, e.description, e.category_id, COALESCE(c.name, ''),
	e.date, e.paid_by, e.payer_share, e.partner_share, e.settled_at, e.created_at`

const expenseFrom = `
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var expense model.Expense
	var categoryID sql.NullInt64
	var description sql.NullString
	var settledAt sql.NullTime

	err := row.Scan(
		&expense.ID, &expense.Amount, &description, &categoryID, &expense.CategoryName,
		&expense.Date, &expense.PaidBy, &expense.Split.PayerShare, &expense.Split.PartnerShare,
		&settledAt, &expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		expense.Description = description.String
	}
	if categoryID.Valid {
		expense.CategoryID = int(categoryID.Int64)
	}
	if settledAt.Valid {
		t := settledAt.Time
		expense.SettledAt = &t
	}
	return &expense, nil
}

// nullableCategoryID maps the uncategorized sentinel (0) onto SQL NULL.
func nullableCategoryID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}

// CreateExpense persists a new expense and returns it with its assigned ID.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO expenses (amount, description, category_id, date, paid_by, payer_share, partner_share, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		expense.Amount, expense.Description, nullableCategoryID(expense.CategoryID),
		expense.Date, expense.PaidBy, expense.Split.PayerShare, expense.Split.PartnerShare, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense ID: %w", err)
	}

	created := *expense
	created.ID = id
	created.CreatedAt = now

	slog.Info("created expense",
		"id", id,
		"amount", expense.Amount,
		"category_id", expense.CategoryID)
	return &created, nil
}

// UpdateExpense applies a partial edit and returns the updated expense.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, id int64, update model.ExpenseUpdate) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateExpenseUpdate(update); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	if update.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *update.Amount)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, nullableCategoryID(*update.CategoryID))
	}
	if update.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *update.Date)
	}
	if update.Split != nil {
		sets = append(sets, "payer_share = ?", "partner_share = ?")
		args = append(args, update.Split.PayerShare, update.Split.PartnerShare)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidExpense)
	}

	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}

	slog.Info("updated expense", "id", id)
	return s.GetExpenseByID(ctx, id)
}

// DeleteExpense removes an expense permanently.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}

	slog.Info("deleted expense", "id", id)
	return nil
}

// GetExpenseByID returns a single expense.
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := "SELECT" + expenseColumns + expenseFrom + " WHERE e.id = ?"
	expense, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns the most recent expenses, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, limit int) ([]model.Expense, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.GetExpenses(ctx, service.ExpenseFilter{Limit: limit})
}

// GetExpenses returns expenses matching the filter, newest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conds []string
	var args []any
	if filter.StartDate != nil {
		conds = append(conds, "e.date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, "e.date < ?")
		args = append(args, *filter.EndDate)
	}
	if filter.CategoryID != nil {
		conds = append(conds, "e.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Unsettled {
		conds = append(conds, "e.settled_at IS NULL")
	}

	query := "SELECT" + expenseColumns + expenseFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.date DESC, e.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// GetBalance computes who owes whom across all unsettled expenses. The
// owed amount for each expense is the partner's share of what the payer
// fronted.
func (s *SQLiteStorage) GetBalance(ctx context.Context) (*model.Balance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	expenses, err := s.GetExpenses(ctx, service.ExpenseFilter{Unsettled: true})
	if err != nil {
		return nil, err
	}

	// Net per payer: positive means the partner owes them.
	net := make(map[string]float64)
	for _, e := range expenses {
		net[e.PaidBy] += e.Amount * float64(e.Split.PartnerShare) / 100
	}

	// Two payers at most; fold them into a single directed balance.
	var payers []string
	for name := range net {
		payers = append(payers, name)
	}

	balance := &model.Balance{}
	switch len(payers) {
	case 0:
		return balance, nil
	case 1:
		if net[payers[0]] > 0 {
			balance.OwedTo = payers[0]
			balance.Owes = otherPartner(payers[0])
			balance.Amount = net[payers[0]]
		}
	default:
		a, b := payers[0], payers[1]
		diff := net[a] - net[b]
		switch {
		case diff > 0:
			balance.OwedTo, balance.Owes, balance.Amount = a, b, diff
		case diff < 0:
			balance.OwedTo, balance.Owes, balance.Amount = b, a, -diff
		}
	}
	return balance, nil
}

// otherPartner names the counterparty for a single-payer balance.
func otherPartner(payer string) string {
	if payer == "partner" {
		return "me"
	}
	return "partner"
}

// SettleExpenses marks all unsettled expenses as settled and returns how
// many were affected.
func (s *SQLiteStorage) SettleExpenses(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET settled_at = ? WHERE settled_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to settle expenses: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check settle result: %w", err)
	}

	slog.Info("settled expenses", "count", affected)
	return affected, nil
}
