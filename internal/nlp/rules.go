package nlp

import "github.com/miguelangat/dividela2-sub008/internal/model"

// Rule binds an intent to a regex pattern with an explicit priority.
// Higher priority rules are checked first; the first match wins. Priorities
// are declared rather than implied by slice order so the tie-break is
// auditable and testable in isolation.
type Rule struct {
	Name     string
	Pattern  string
	Intent   model.Intent
	Priority int
}

// DefaultRules returns the built-in intent rule table. Destructive and
// specific intents carry higher priorities than the generic add rule so
// "delete expense" never falls through to an add.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "delete-expense",
			Intent:   model.IntentDeleteExpense,
			Pattern:  `\b(delete|remove|undo)\b`,
			Priority: 200,
		},
		{
			Name:     "edit-expense",
			Intent:   model.IntentEditExpense,
			Pattern:  `\b(edit|change|update|modify|correct)\b`,
			Priority: 190,
		},
		{
			Name:     "settle",
			Intent:   model.IntentSettle,
			Pattern:  `\bsettle(\s+up)?\b|\bsquare\s+up\b|\beven\s+up\b`,
			Priority: 180,
		},
		{
			Name:     "query-budget",
			Intent:   model.IntentQueryBudget,
			Pattern:  `\bbudgets?\b`,
			Priority: 170,
		},
		{
			Name:     "query-spending",
			Intent:   model.IntentQuerySpending,
			Pattern:  `\bhow\s+much\b.*\bspen[dt]\b|\bspending\b`,
			Priority: 165,
		},
		{
			Name:     "query-balance",
			Intent:   model.IntentQueryBalance,
			Pattern:  `\bbalance\b|\bwho\s+owes\b|\bowed\b`,
			Priority: 160,
		},
		{
			Name:     "list-expenses",
			Intent:   model.IntentListExpenses,
			Pattern:  `\b(list|show|view|recent)\b.*\bexpenses?\b`,
			Priority: 150,
		},
		{
			Name:     "help",
			Intent:   model.IntentHelp,
			Pattern:  `\bhelp\b|\bwhat\s+can\s+you\s+do\b`,
			Priority: 140,
		},
		{
			Name:     "add-expense",
			Intent:   model.IntentAddExpense,
			Pattern:  `\b(add|spent|spend|paid|pay|bought|got)\b|\$\s*\d|\b\d+(\.\d+)?\s*(dollars?|bucks?)\b`,
			Priority: 100,
		},
	}
}
