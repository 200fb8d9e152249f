package model

import "time"

// SplitRatio describes how an expense is divided between the two partners.
// PayerShare is the percentage covered by whoever paid; PartnerShare is the
// percentage owed by the other partner. A valid ratio sums to exactly 100.
type SplitRatio struct {
	PayerShare   int
	PartnerShare int
}

// DefaultSplit is the even split applied when no ratio is extracted.
func DefaultSplit() SplitRatio {
	return SplitRatio{PayerShare: 50, PartnerShare: 50}
}

// IsValid reports whether both shares are non-negative and sum to 100.
func (s SplitRatio) IsValid() bool {
	return s.PayerShare >= 0 && s.PartnerShare >= 0 && s.PayerShare+s.PartnerShare == 100
}

// Expense represents a single shared expense.
type Expense struct {
	Date         time.Time
	CreatedAt    time.Time
	SettledAt    *time.Time
	Description  string
	CategoryName string
	PaidBy       string
	Split        SplitRatio
	Amount       float64
	ID           int64
	CategoryID   int
}

// ExpenseUpdate carries the fields of an expense edit. Nil fields are
// left unchanged.
type ExpenseUpdate struct {
	Amount      *float64
	CategoryID  *int
	Date        *time.Time
	Description *string
	Split       *SplitRatio
}

// Balance summarizes who owes whom across all unsettled expenses.
type Balance struct {
	Owes   string
	OwedTo string
	Amount float64
}

// IsSettled reports whether nothing is currently owed.
func (b Balance) IsSettled() bool {
	return b.Amount == 0
}
