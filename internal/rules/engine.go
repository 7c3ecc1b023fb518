// Package rules implements the regex-based intent overrides that take
// precedence over semantic matching for a few high-value intents whose
// phrasings are too structurally variable for similarity search to
// separate from neighboring intents.
package rules

import (
	"regexp"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/model"
)

// OverrideScore is the synthetic confidence attached to a fired
// override; it supersedes the semantic matcher and the low-confidence
// fallback rule.
const OverrideScore = 1.0

// Override is one rule-based intent detector: an ordered list of
// patterns mapped to a fixed QID.
type Override struct {
	QID      string
	Label    string
	patterns []*regexp.Regexp
}

// NewOverride compiles an override from pattern sources.
func NewOverride(qid, label string, patterns ...string) (Override, error) {
	o := Override{QID: qid, Label: label}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Override{}, err
		}
		o.patterns = append(o.patterns, re)
	}
	return o, nil
}

// MustOverride is NewOverride that panics on a bad pattern; for
// package-level defaults only.
func MustOverride(qid, label string, patterns ...string) Override {
	o, err := NewOverride(qid, label, patterns...)
	if err != nil {
		panic(err)
	}
	return o
}

// Matches reports whether any pattern matches the lowercased question.
func (o Override) Matches(q string) bool {
	ql := strings.ToLower(q)
	for _, re := range o.patterns {
		if re.MatchString(ql) {
			return true
		}
	}
	return false
}

// Engine evaluates overrides in fixed priority order; first match wins.
type Engine struct {
	overrides []Override
}

// NewEngine builds an engine over the given overrides, kept in order.
func NewEngine(overrides ...Override) *Engine {
	return &Engine{overrides: overrides}
}

// DefaultEngine returns the production override set: explicit
// "margin below N%" questions resolve to Q1 and explicit "C&B
// quarter-over-quarter change" questions resolve to Q3.
func DefaultEngine() *Engine {
	return NewEngine(
		MustOverride("Q1", "Margin % below threshold",
			`\b(?:margin|gm|cm)\s*%?\s*<\s*\d+\s*%?`,
			`\b(?:margin|gm|cm)\s*(?:%|percent|percentage)?\s*(?:less than|below|under)\s*\d+\s*%?`,
			`\b(?:less than|below|under)\s*\d+\s*%?\s*(?:margin|gm|cm)\b`,
		),
		MustOverride("Q3", "C&B QoQ variation",
			`\bc\s*&\s*b\b.*\b(?:var(?:y|ied)|change|delta|diff(?:erence)?)\b.*\bquarter\b`,
			`\bc\s*and\s*b\b.*\b(?:var(?:y|ied)|change|delta|diff(?:erence)?)\b.*\bquarter\b`,
			`\bc&b\b.*\bqoq\b`,
			`\bqoq\b.*\bc&b\b`,
			`\bcompare\b.*\bc&b\b.*\bquarter\b`,
		),
	)
}

// Evaluate returns the first firing override as a MatchResult with the
// fixed maximal score, or false when none fires.
func (e *Engine) Evaluate(q string) (model.MatchResult, bool) {
	for _, o := range e.overrides {
		if o.Matches(q) {
			return model.MatchResult{QID: o.QID, Prompt: o.Label, Score: OverrideScore}, true
		}
	}
	return model.MatchResult{}, false
}
