package nlp

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"dollar sign", "add $50 for food", amountPtr(50)},
		{"dollar sign with cents", "add $12.75 for food", amountPtr(12.75)},
		{"dollar sign with space", "add $ 9.99", amountPtr(9.99)},
		{"dollars word", "spent 30 dollars on gas", amountPtr(30)},
		{"bucks", "paid 5 bucks", amountPtr(5)},
		{"bare number with context", "spent 42.50 at the market", amountPtr(42.50)},
		{"bare number without context", "the 42 bus was late", nil},
		{"negative dollar", "add -$50", nil},
		{"negative after dollar", "add $-50", nil},
		{"negative dollars word", "-30 dollars", nil},
		{"too many fraction digits", "add $12.345", nil},
		{"no amount at all", "add groceries", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractAmount(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

// Dollar-and-cents strings must round-trip exactly through extraction.
func TestExtractAmount_DollarCentsExact(t *testing.T) {
	values := []struct {
		whole int64
		cents int
	}{
		{0, 0}, {0, 99}, {1, 50}, {19, 5}, {12345, 67}, {999999999, 99}, {1000000000, 0},
	}

	for _, v := range values {
		raw := fmt.Sprintf("%d.%02d", v.whole, v.cents)
		input := fmt.Sprintf("add $%s for things", raw)

		got, _ := extractAmount(input)
		require.NotNil(t, got, "input %q", input)

		want, err := strconv.ParseFloat(raw, 64)
		require.NoError(t, err)
		assert.Equal(t, want, *got, "input %q", input)
	}
}

func TestExtractDate(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
	midnight := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		want  *time.Time
		name  string
		input string
	}{
		{datePtr(midnight(2024, 5, 15)), "today", "add $5 today"},
		{datePtr(midnight(2024, 5, 14)), "yesterday", "add $5 yesterday"},
		{datePtr(midnight(2024, 5, 8)), "last week", "add $5 last week"},
		{datePtr(midnight(2024, 3, 2)), "iso date", "add $5 on 2024-03-02"},
		{nil, "no date", "add $5 for food"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractDate(tt.input, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestExtractSplit(t *testing.T) {
	tests := []struct {
		want  *model.SplitRatio
		name  string
		input string
	}{
		{&model.SplitRatio{PayerShare: 60, PartnerShare: 40}, "slash form", "60/40 for rent"},
		{&model.SplitRatio{PayerShare: 70, PartnerShare: 30}, "dash form", "split 70-30"},
		{&model.SplitRatio{PayerShare: 100, PartnerShare: 0}, "all on payer", "100/0 this time"},
		{nil, "does not sum to 100", "70/40 for rent"},
		{nil, "no ratio", "add $50 for rent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractSplit(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A malformed ratio's digits must not leak into amount extraction.
func TestExtractEntities_MalformedSplitConsumed(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	entities := extractEntities("70/40 for rent, $200", model.IntentAddExpense, now)
	assert.Nil(t, entities.Split)
	require.True(t, entities.HasAmount())
	assert.InDelta(t, 200.0, *entities.Amount, 0.001)
}

// An ISO date must never be misread as a split ratio.
func TestExtractEntities_ISODateNotASplit(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	entities := extractEntities("add $20 for gas on 2024-05-12", model.IntentAddExpense, now)
	assert.Nil(t, entities.Split)
	require.NotNil(t, entities.Date)
	assert.Equal(t, "2024-05-12", entities.Date.Format("2006-01-02"))
}

func TestExtractCategoryToken(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		intent model.Intent
		want   string
	}{
		{"for preposition", "add  for groceries", model.IntentAddExpense, "groceries"},
		{"on preposition", "spent  on lunch", model.IntentAddExpense, "lunch"},
		{"stops at comma", "for rent, thanks", model.IntentAddExpense, "rent"},
		{"multi word token", "for dinner with friends", model.IntentAddExpense, "dinner with friends"},
		{"budget question fallback", "what's my food budget", model.IntentQueryBudget, "food"},
		{"two word budget fallback", "grocery store budget", model.IntentQueryBudget, "grocery store"},
		{"overall budget has no token", "what's our overall budget", model.IntentQueryBudget, ""},
		{"no token", "add $50", model.IntentAddExpense, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractCategoryToken(tt.input, tt.intent)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading verb stripped", "add  ", ""},
		{"chained verbs stripped", "I paid  ", ""},
		{"content survives", "paid dinner with sara", "dinner with sara"},
		{"whitespace collapsed", "  two   words  ", "two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanDescription(tt.input))
		})
	}
}

func amountPtr(f float64) *float64 { return &f }

func datePtr(t time.Time) *time.Time { return &t }
