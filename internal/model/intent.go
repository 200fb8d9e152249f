package model

import "time"

// Intent is the classified purpose of a chat utterance.
type Intent string

const (
	// IntentAddExpense records a new shared expense.
	IntentAddExpense Intent = "add_expense"
	// IntentEditExpense modifies a previously recorded expense.
	IntentEditExpense Intent = "edit_expense"
	// IntentDeleteExpense removes a previously recorded expense.
	IntentDeleteExpense Intent = "delete_expense"
	// IntentQueryBudget asks for a category's (or the overall) budget status.
	IntentQueryBudget Intent = "query_budget"
	// IntentQueryBalance asks who currently owes whom.
	IntentQueryBalance Intent = "query_balance"
	// IntentQuerySpending asks how much has been spent.
	IntentQuerySpending Intent = "query_spending"
	// IntentListExpenses asks for recent expenses.
	IntentListExpenses Intent = "list_expenses"
	// IntentSettle clears the outstanding balance between partners.
	IntentSettle Intent = "settle"
	// IntentHelp asks what the assistant can do.
	IntentHelp Intent = "help"
	// IntentUnknown is produced when no rule matches the input.
	IntentUnknown Intent = "unknown"
)

// EntitySet holds the structured values extracted from free text. Every
// field is optional; absence is a valid state, not an error. CategoryToken
// is the raw text following "for"/"on" and is resolved against the known
// category list later, never by the extractor itself.
type EntitySet struct {
	Amount          *float64
	Date            *time.Time
	Split           *SplitRatio
	CategoryToken   string
	Description     string
	TargetExpenseID int64
}

// HasAmount reports whether an amount was extracted.
func (e EntitySet) HasAmount() bool {
	return e.Amount != nil
}
