package dispatch

import (
	"fmt"
	"strings"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// helpText is shown for explicit help requests and unrecognized input.
func helpText(intent model.Intent) string {
	var b strings.Builder
	if intent == model.IntentUnknown {
		b.WriteString("Sorry, I didn't catch that. Here's what I can do:\n")
	} else {
		b.WriteString("Here's what I can do:\n")
	}
	b.WriteString(`  - "add $50 for groceries" (optionally "60/40", "yesterday", "2024-05-12")
  - "change it to $40" / "delete expense"
  - "what's my food budget" / "how much did we spend on food"
  - "what's our balance" / "settle up"
  - "show recent expenses"`)
	return b.String()
}

// addedText describes a freshly recorded expense.
func addedText(expense *model.Expense, notice string) string {
	text := fmt.Sprintf("Got it — %s, split %d/%d.",
		expenseLine(expense), expense.Split.PayerShare, expense.Split.PartnerShare)
	if notice != "" {
		text += " " + notice
	}
	return text
}

// expenseLine renders a one-line summary of an expense.
func expenseLine(expense *model.Expense) string {
	category := expense.CategoryName
	if category == "" {
		category = model.UncategorizedName
	}
	line := fmt.Sprintf("%s for %s on %s",
		formatMoney(expense.Amount), category, expense.Date.Format("Jan 2"))
	if expense.Description != "" {
		line += fmt.Sprintf(" (%s)", expense.Description)
	}
	return line
}

// candidateListText renders a 1-based selection list.
func candidateListText(candidates []model.CategoryCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %d. %s", i+1, c.Name)
	}
	return b.String()
}

// figuresText answers a budget or spending question from a status.
func figuresText(intent model.Intent, status *model.BudgetStatus) string {
	name := status.CategoryName
	if name == "" {
		name = "overall"
	}

	if intent == model.IntentQuerySpending {
		return fmt.Sprintf("You've spent %s on %s this month.", formatMoney(status.Spent), name)
	}

	if !status.HasLimit() {
		return fmt.Sprintf("No budget is set for %s. You've spent %s this month.",
			name, formatMoney(status.Spent))
	}
	return fmt.Sprintf("%s budget: %s spent of %s, %s left.",
		name, formatMoney(status.Spent), formatMoney(status.Limit), formatMoney(status.Remaining()))
}

// expenseListText renders recent expenses, newest first.
func expenseListText(expenses []model.Expense) string {
	if len(expenses) == 0 {
		return "No expenses recorded yet."
	}

	var b strings.Builder
	b.WriteString("Recent expenses:")
	for _, e := range expenses {
		e := e
		fmt.Fprintf(&b, "\n  #%d %s", e.ID, expenseLine(&e))
	}
	return b.String()
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
