// Package nlp classifies free-text chat input into intents and extracts
// structured entities (amount, category token, date, split ratio).
package nlp

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// compiledRule pairs a rule with its compiled regex.
type compiledRule struct {
	re *regexp.Regexp
	Rule
}

// Classifier is a pure pattern-based intent classifier. Classification
// never fails: unrecognized input yields IntentUnknown with an empty
// entity set.
type Classifier struct {
	now   func() time.Time
	rules []compiledRule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock overrides the clock used to resolve relative dates. Tests use
// this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// NewClassifier compiles the given rule table. Patterns are made
// case-insensitive and checked in descending priority order; ties keep
// declaration order.
func NewClassifier(rules []Rule, opts ...Option) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		pattern := r.Pattern
		if !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{re: re, Rule: r})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	c := &Classifier{
		rules: compiled,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify determines the intent of text and extracts its entities. The
// category token, if any, is returned raw: resolving it against the known
// category list is the caller's job.
func (c *Classifier) Classify(text string) (model.Intent, model.EntitySet) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.IntentUnknown, model.EntitySet{}
	}

	intent := model.IntentUnknown
	for _, rule := range c.rules {
		if rule.re.MatchString(trimmed) {
			intent = rule.Intent
			break
		}
	}

	if intent == model.IntentUnknown {
		return intent, model.EntitySet{}
	}

	return intent, extractEntities(trimmed, intent, c.now())
}

// RuleCount returns the number of compiled rules.
func (c *Classifier) RuleCount() int {
	return len(c.rules)
}
