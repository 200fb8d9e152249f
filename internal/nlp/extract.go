package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

var (
	isoDateRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	lastWeekRe = regexp.MustCompile(`(?i)\blast\s+week\b`)
	yesterdayRe = regexp.MustCompile(`(?i)\byesterday\b`)
	todayRe    = regexp.MustCompile(`(?i)\btoday\b`)

	splitRe = regexp.MustCompile(`\b(\d{1,3})\s*[/-]\s*(\d{1,3})\b`)

	dollarAmountRe = regexp.MustCompile(`(-?)\$\s*(-?)(\d+(?:\.\d+)?)`)
	wordAmountRe   = regexp.MustCompile(`(?i)(-?)(\d+(?:\.\d+)?)\s*(?:dollars?|bucks?)\b`)
	bareAmountRe   = regexp.MustCompile(`(-?)(\d+(?:\.\d+)?)`)
	// Context words that make a bare number safe to read as an amount.
	amountContextRe = regexp.MustCompile(`(?i)\b(add|spent|spend|paid|pay|cost|costs|bought|charge|expense|owe|owes)\b`)

	categoryTokenRe = regexp.MustCompile(`(?i)\b(?:for|on)\s+([^,.;:!?]+)`)
	leadingVerbRe   = regexp.MustCompile(`(?i)^(?:please\s+|i\s+|we\s+)?(?:add|record|log|note|spent|spend|paid|pay|bought|got)\b[\s:]*`)
)

// budgetStopwords are filler words skipped when pulling a category token
// out of a budget question like "what's my food budget".
var budgetStopwords = map[string]bool{
	"my": true, "our": true, "the": true, "a": true,
	"what": true, "whats": true, "what's": true, "is": true,
	"overall": true, "total": true, "whole": true, "entire": true,
	"much": true, "how": true, "left": true, "in": true, "of": true,
	"show": true, "me": true, "check": true,
}

// extractEntities pulls every recognizable entity out of text. Extraction
// order matters: dates are stripped before split ratios so "2024-05-12"
// is never misread as a ratio, and ratios before amounts so "60/40" is
// never misread as a bare number.
func extractEntities(text string, intent model.Intent, now time.Time) model.EntitySet {
	var entities model.EntitySet
	work := text

	entities.Date, work = extractDate(work, now)
	entities.Split, work = extractSplit(work)
	entities.Amount, work = extractAmount(work)
	entities.CategoryToken, work = extractCategoryToken(work, intent)
	entities.Description = cleanDescription(work)

	return entities
}

// extractDate recognizes "today", "yesterday", "last week" and ISO dates.
// Returns nil when no date is present; the dispatcher substitutes today.
func extractDate(text string, now time.Time) (*time.Time, string) {
	if loc := isoDateRe.FindStringIndex(text); loc != nil {
		raw := text[loc[0]:loc[1]]
		if parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
			return &parsed, cutSpan(text, loc)
		}
	}
	if loc := lastWeekRe.FindStringIndex(text); loc != nil {
		d := dayOf(now.AddDate(0, 0, -7))
		return &d, cutSpan(text, loc)
	}
	if loc := yesterdayRe.FindStringIndex(text); loc != nil {
		d := dayOf(now.AddDate(0, 0, -1))
		return &d, cutSpan(text, loc)
	}
	if loc := todayRe.FindStringIndex(text); loc != nil {
		d := dayOf(now)
		return &d, cutSpan(text, loc)
	}
	return nil, text
}

// extractSplit recognizes NN/NN and NN-NN ratio pairs. A pair that does
// not sum to exactly 100 is discarded entirely rather than partially
// applied, but its text is still consumed so the digits cannot leak into
// amount extraction.
func extractSplit(text string) (*model.SplitRatio, string) {
	m := splitRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, text
	}

	first, err1 := strconv.Atoi(text[m[2]:m[3]])
	second, err2 := strconv.Atoi(text[m[4]:m[5]])
	cleaned := cutSpan(text, m[:2])

	if err1 != nil || err2 != nil {
		return nil, cleaned
	}
	ratio := model.SplitRatio{PayerShare: first, PartnerShare: second}
	if !ratio.IsValid() {
		return nil, cleaned
	}
	return &ratio, cleaned
}

// extractAmount recognizes "$50", "50 dollars" and, when the text carries
// spending context words, bare numbers. Negative amounts and more than two
// fraction digits are treated as invalid: no amount is extracted and the
// dispatcher prompts for one.
func extractAmount(text string) (*float64, string) {
	if m := dollarAmountRe.FindStringSubmatchIndex(text); m != nil {
		negative := text[m[2]:m[3]] == "-" || text[m[4]:m[5]] == "-"
		return parseAmount(text[m[6]:m[7]], negative), cutSpan(text, m[:2])
	}

	if m := wordAmountRe.FindStringSubmatchIndex(text); m != nil {
		negative := text[m[2]:m[3]] == "-"
		return parseAmount(text[m[4]:m[5]], negative), cutSpan(text, m[:2])
	}

	if amountContextRe.MatchString(text) {
		if m := bareAmountRe.FindStringSubmatchIndex(text); m != nil {
			negative := text[m[2]:m[3]] == "-"
			return parseAmount(text[m[4]:m[5]], negative), cutSpan(text, m[:2])
		}
	}

	return nil, text
}

// parseAmount validates and parses a captured number. Returns nil for
// negative values or more than two fraction digits.
func parseAmount(raw string, negative bool) *float64 {
	if negative {
		return nil
	}
	if dot := strings.IndexByte(raw, '.'); dot >= 0 && len(raw)-dot-1 > 2 {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// extractCategoryToken finds the raw category token: the text following
// "for" or "on" up to the next punctuation break or end of string. Budget
// questions without a preposition ("what's my food budget") fall back to
// the words immediately preceding "budget".
func extractCategoryToken(text string, intent model.Intent) (string, string) {
	if m := categoryTokenRe.FindStringSubmatchIndex(text); m != nil {
		token := trimFillerWords(strings.TrimSpace(text[m[2]:m[3]]))
		return token, cutSpan(text, m[:2])
	}

	if intent == model.IntentQueryBudget {
		return budgetToken(text), text
	}

	return "", text
}

// budgetToken collects up to two non-filler words immediately before the
// word "budget".
func budgetToken(text string) string {
	words := strings.Fields(strings.ToLower(text))
	budgetIdx := -1
	for i, w := range words {
		w = strings.Trim(w, "?!.,:;")
		if w == "budget" || w == "budgets" {
			budgetIdx = i
			break
		}
	}
	if budgetIdx <= 0 {
		return ""
	}

	var collected []string
	for i := budgetIdx - 1; i >= 0 && len(collected) < 2; i-- {
		w := strings.Trim(words[i], "?!.,:;")
		if budgetStopwords[w] {
			break
		}
		collected = append([]string{w}, collected...)
	}
	return strings.Join(collected, " ")
}

// trimFillerWords drops dangling prepositions and articles left behind at
// the end of a token after other entities were cut out ("gas on" -> "gas").
func trimFillerWords(token string) string {
	fillers := map[string]bool{"on": true, "for": true, "at": true, "in": true, "the": true, "a": true}
	words := strings.Fields(token)
	for len(words) > 0 && fillers[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// cleanDescription reduces whatever text survived entity extraction to a
// usable free-text description.
func cleanDescription(text string) string {
	// Peel leading command verbs ("add", "I paid", ...), at most a few.
	for range [3]struct{}{} {
		stripped := leadingVerbRe.ReplaceAllString(strings.TrimSpace(text), "")
		if stripped == text {
			break
		}
		text = stripped
	}

	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, " ,.;:-?!")
}

// cutSpan removes the half-open byte span loc from text.
func cutSpan(text string, loc []int) string {
	return text[:loc[0]] + " " + text[loc[1]:]
}

// dayOf truncates a time to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
