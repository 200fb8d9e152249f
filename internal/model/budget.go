package model

// Budget is a per-category monthly spending limit.
type Budget struct {
	CategoryName string
	Limit        float64
	CategoryID   int
}

// BudgetStatus pairs month-to-date spend with the configured limit.
// Limit is zero when no budget has been set for the category.
type BudgetStatus struct {
	CategoryName string
	Spent        float64
	Limit        float64
}

// Remaining returns how much of the limit is left. Negative when over budget.
func (b BudgetStatus) Remaining() float64 {
	return b.Limit - b.Spent
}

// HasLimit reports whether a budget has actually been configured.
func (b BudgetStatus) HasLimit() bool {
	return b.Limit > 0
}
