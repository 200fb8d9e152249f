package nlp

import (
	"testing"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultRules(), WithClock(fixedClock))
	require.NoError(t, err)
	return c
}

func TestClassifier_Intents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Intent
	}{
		{"add with dollar sign", "Add $50 for groceries", model.IntentAddExpense},
		{"add with spent", "spent 20 on lunch", model.IntentAddExpense},
		{"add with dollars word", "15 dollars for parking", model.IntentAddExpense},
		{"delete", "delete expense", model.IntentDeleteExpense},
		{"remove beats add keywords", "remove the expense I added", model.IntentDeleteExpense},
		{"edit", "change the last expense to $40", model.IntentEditExpense},
		{"settle", "settle up", model.IntentSettle},
		{"budget query", "what's my food budget", model.IntentQueryBudget},
		{"spending query", "how much did we spend on food", model.IntentQuerySpending},
		{"balance query", "what's our balance", model.IntentQueryBalance},
		{"who owes who", "who owes who", model.IntentQueryBalance},
		{"list", "show recent expenses", model.IntentListExpenses},
		{"help", "help", model.IntentHelp},
		{"unknown", "good morning to you", model.IntentUnknown},
		{"empty", "   ", model.IntentUnknown},
	}

	c := newTestClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, _ := c.Classify(tt.input)
			assert.Equal(t, tt.want, intent)
		})
	}
}

func TestClassifier_UnknownHasEmptyEntities(t *testing.T) {
	c := newTestClassifier(t)

	intent, entities := c.Classify("lovely weather we're having")
	assert.Equal(t, model.IntentUnknown, intent)
	assert.Equal(t, model.EntitySet{}, entities)
}

func TestClassifier_PriorityBeatsDeclarationOrder(t *testing.T) {
	// Declare the generic rule first; the higher priority specific rule
	// must still win.
	rules := []Rule{
		{Name: "generic-add", Intent: model.IntentAddExpense, Pattern: `\b(add|delete)\b`, Priority: 100},
		{Name: "delete", Intent: model.IntentDeleteExpense, Pattern: `\bdelete\b`, Priority: 200},
	}
	c, err := NewClassifier(rules)
	require.NoError(t, err)

	intent, _ := c.Classify("delete that")
	assert.Equal(t, model.IntentDeleteExpense, intent)
}

func TestClassifier_EqualPriorityKeepsDeclarationOrder(t *testing.T) {
	rules := []Rule{
		{Name: "first", Intent: model.IntentQueryBalance, Pattern: `\bword\b`, Priority: 100},
		{Name: "second", Intent: model.IntentHelp, Pattern: `\bword\b`, Priority: 100},
	}
	c, err := NewClassifier(rules)
	require.NoError(t, err)

	intent, _ := c.Classify("word")
	assert.Equal(t, model.IntentQueryBalance, intent)
}

func TestClassifier_InvalidPattern(t *testing.T) {
	_, err := NewClassifier([]Rule{{Name: "bad", Pattern: `[unclosed`, Priority: 1}})
	assert.Error(t, err)
}

func TestClassifier_FullExtraction(t *testing.T) {
	c := newTestClassifier(t)

	intent, entities := c.Classify("Add $50 for groceries")
	assert.Equal(t, model.IntentAddExpense, intent)
	require.True(t, entities.HasAmount())
	assert.InDelta(t, 50.0, *entities.Amount, 0.001)
	assert.Equal(t, "groceries", entities.CategoryToken)
	assert.Nil(t, entities.Date)
	assert.Nil(t, entities.Split)
}

func TestClassifier_SplitAmountAndCategoryTogether(t *testing.T) {
	// Scenario: ratio, amount and category in one utterance.
	c := newTestClassifier(t)

	intent, entities := c.Classify("60/40 for rent, $200")
	assert.Equal(t, model.IntentAddExpense, intent)
	require.NotNil(t, entities.Split)
	assert.Equal(t, 60, entities.Split.PayerShare)
	assert.Equal(t, 40, entities.Split.PartnerShare)
	require.True(t, entities.HasAmount())
	assert.InDelta(t, 200.0, *entities.Amount, 0.001)
	assert.Equal(t, "rent", entities.CategoryToken)
}

func TestClassifier_BudgetQueryToken(t *testing.T) {
	c := newTestClassifier(t)

	intent, entities := c.Classify("what's my food budget")
	assert.Equal(t, model.IntentQueryBudget, intent)
	assert.Equal(t, "food", entities.CategoryToken)
}
