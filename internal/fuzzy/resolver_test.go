package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Match(t *testing.T) {
	categories := []Candidate{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Grocery Store"},
		{ID: 3, Name: "Dining Out"},
		{ID: 4, Name: "Utilities"},
	}

	tests := []struct {
		name     string
		token    string
		wantIDs  []int
		wantTopID int
	}{
		{
			name:      "exact match scores highest",
			token:     "Groceries",
			wantTopID: 1,
		},
		{
			name:      "case and punctuation ignored",
			token:     "  grocery-store ",
			wantTopID: 2,
		},
		{
			name:      "typo still resolves",
			token:     "grocry",
			wantTopID: 1,
		},
		{
			name:    "unrelated token clears nothing",
			token:   "zzzzzzzzzzzz",
			wantIDs: []int{},
		},
	}

	r := NewResolver(DefaultFloor)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.Match(tt.token, categories)
			if tt.wantIDs != nil {
				assert.Len(t, results, len(tt.wantIDs))
				return
			}
			require.NotEmpty(t, results)
			assert.Equal(t, tt.wantTopID, results[0].ID)
		})
	}
}

func TestResolver_SelfMatchIsExactlyOne(t *testing.T) {
	r := NewResolver(DefaultFloor)
	for _, name := range []string{"Groceries", "Dining Out", "Café", "日用品"} {
		best := r.BestMatch(name, []Candidate{{ID: 1, Name: name}})
		require.NotNil(t, best, "self match for %q", name)
		assert.InDelta(t, 1.0, best.Score, 0, "self match score must be exactly 1.0")
	}
}

func TestResolver_ScoresAreNonIncreasing(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Name: "Rent"},
		{ID: 2, Name: "Rental Car"},
		{ID: 3, Name: "Entertainment"},
		{ID: 4, Name: "Rent"},
	}

	results := NewResolver(0.1).Match("rent", candidates)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestResolver_TiesKeepDeclarationOrder(t *testing.T) {
	candidates := []Candidate{
		{ID: 10, Name: "Rent"},
		{ID: 20, Name: "rent"},
	}

	results := NewResolver(DefaultFloor).Match("Rent", candidates)
	require.Len(t, results, 2)
	assert.Equal(t, 10, results[0].ID)
	assert.Equal(t, 20, results[1].ID)
}

func TestResolver_EmptyInputs(t *testing.T) {
	r := NewResolver(DefaultFloor)

	assert.Empty(t, r.Match("", []Candidate{{ID: 1, Name: "Groceries"}}))
	assert.Empty(t, r.Match("   ", []Candidate{{ID: 1, Name: "Groceries"}}))
	assert.Empty(t, r.Match("groceries", nil))
	assert.Nil(t, r.BestMatch("", nil))
}

func TestResolver_UnicodeDoesNotPanic(t *testing.T) {
	r := NewResolver(0.1)
	candidates := []Candidate{
		{ID: 1, Name: "Café"},
		{ID: 2, Name: "日用品"},
		{ID: 3, Name: "Épicerie"},
	}

	assert.NotPanics(t, func() {
		r.Match("café", candidates)
		r.Match("日用", candidates)
		r.Match("epicerie", candidates)
	})

	best := r.BestMatch("café", candidates)
	if assert.NotNil(t, best) {
		assert.Equal(t, 1, best.ID)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"grocry", "grocery", 1},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		got := levenshtein([]rune(tt.a), []rune(tt.b))
		assert.Equal(t, tt.want, got, "levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "grocerystore", Normalize(" Grocery-Store! "))
	assert.Equal(t, "café", Normalize("Café"))
	assert.Equal(t, "", Normalize("  ---  "))
}
