// Package storage provides the data persistence layer for the dividela application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidBudget  = errors.New("invalid budget")
	ErrNotFound       = errors.New("not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates a single expense before it is persisted.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if expense.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.PaidBy) == "" {
		return fmt.Errorf("%w: missing payer", ErrInvalidExpense)
	}
	if !expense.Split.IsValid() {
		return fmt.Errorf("%w: split %d/%d does not sum to 100",
			ErrInvalidExpense, expense.Split.PayerShare, expense.Split.PartnerShare)
	}
	return nil
}

// validateExpenseUpdate validates the populated fields of an edit.
func validateExpenseUpdate(update model.ExpenseUpdate) error {
	if update.Amount != nil && *update.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if update.Date != nil && update.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidExpense)
	}
	if update.Split != nil && !update.Split.IsValid() {
		return fmt.Errorf("%w: split %d/%d does not sum to 100",
			ErrInvalidExpense, update.Split.PayerShare, update.Split.PartnerShare)
	}
	return nil
}
