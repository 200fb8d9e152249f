// Package fuzzy provides approximate string matching for resolving
// free-text category tokens against the known category list.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultFloor is the minimum similarity score a candidate must reach to
// be considered a match.
const DefaultFloor = 0.5

// Candidate is a category the resolver matches tokens against.
type Candidate struct {
	Name string
	ID   int
}

// MatchResult is a single ranked match. Score is in [0, 1]; 1.0 means the
// normalized forms are identical.
type MatchResult struct {
	Name  string
	ID    int
	Score float64
}

// Resolver ranks candidates by normalized edit distance. A plain O(n*m)
// Levenshtein per candidate is fine at the expected scale of a few hundred
// categories.
type Resolver struct {
	floor float64
}

// NewResolver creates a resolver with the given similarity floor. Floors
// outside (0, 1] fall back to DefaultFloor.
func NewResolver(floor float64) *Resolver {
	if floor <= 0 || floor > 1 {
		floor = DefaultFloor
	}
	return &Resolver{floor: floor}
}

// Match scores token against every candidate and returns all candidates at
// or above the floor, sorted by descending score. Ties keep candidate
// declaration order. An empty token or candidate list yields an empty
// result, never an error.
func (r *Resolver) Match(token string, candidates []Candidate) []MatchResult {
	normalized := Normalize(token)
	if normalized == "" || len(candidates) == 0 {
		return nil
	}

	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		score := similarity(normalized, Normalize(c.Name))
		if score >= r.floor {
			results = append(results, MatchResult{ID: c.ID, Name: c.Name, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// BestMatch returns the top match or nil when nothing clears the floor.
func (r *Resolver) BestMatch(token string, candidates []Candidate) *MatchResult {
	results := r.Match(token, candidates)
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// Normalize lowercases the input and strips everything that is not a
// letter or digit, so "Grocery Store" and "grocery-store" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// similarity converts edit distance to a score in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance over code points, not bytes, so
// non-ASCII category names are handled correctly.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
