package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// SetBudget creates or replaces the monthly limit for a category.
func (s *SQLiteStorage) SetBudget(ctx context.Context, categoryID int, monthlyLimit float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if monthlyLimit <= 0 {
		return fmt.Errorf("%w: monthly limit must be positive", ErrInvalidBudget)
	}
	if _, err := s.GetCategoryByID(ctx, categoryID); err != nil {
		return err
	}

	query := `
		INSERT INTO budgets (category_id, monthly_limit, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(category_id) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, categoryID, monthlyLimit, time.Now()); err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}

	slog.Info("set budget", "category_id", categoryID, "monthly_limit", monthlyLimit)
	return nil
}

// GetBudgets returns all configured budgets for active categories.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT b.category_id, c.name, b.monthly_limit
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE c.is_active = 1
		ORDER BY c.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.CategoryID, &b.CategoryName, &b.Limit); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// GetBudgetStatus pairs a category's month-to-date spend with its limit.
// Limit is zero when no budget has been configured.
func (s *SQLiteStorage) GetBudgetStatus(ctx context.Context, categoryID int) (*model.BudgetStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	status := &model.BudgetStatus{CategoryName: category.Name}

	var limit sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT monthly_limit FROM budgets WHERE category_id = ?`, categoryID,
	).Scan(&limit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	if limit.Valid {
		status.Limit = limit.Float64
	}

	spentQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE category_id = ? AND date >= ?`
	if err := s.db.QueryRowContext(ctx, spentQuery, categoryID, monthStart(time.Now())).Scan(&status.Spent); err != nil {
		return nil, fmt.Errorf("failed to query month spend: %w", err)
	}

	return status, nil
}

// GetOverallBudgetStatus sums month-to-date spend across all categories
// against the sum of all configured limits.
func (s *SQLiteStorage) GetOverallBudgetStatus(ctx context.Context) (*model.BudgetStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	status := &model.BudgetStatus{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(monthly_limit), 0) FROM budgets`,
	).Scan(&status.Limit); err != nil {
		return nil, fmt.Errorf("failed to query budget total: %w", err)
	}

	spentQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE date >= ?`
	if err := s.db.QueryRowContext(ctx, spentQuery, monthStart(time.Now())).Scan(&status.Spent); err != nil {
		return nil, fmt.Errorf("failed to query month spend: %w", err)
	}

	return status, nil
}

// monthStart returns midnight on the first day of t's month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
