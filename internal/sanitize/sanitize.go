package sanitize

import (
	"strings"
)

// Match is the outcome of sanitizing one description.
type Match struct {
	Clean    string
	Category *string
	Matched  bool
	Rule     int // index of the winning rule, -1 when unmatched
}

// RuleSet is an ordered, compiled rule list. The first rule with any matching
// pattern wins, so specific rules must precede general ones.
type RuleSet struct {
	rules         []compiledRule
	fallbackToRaw bool
}

// Sanitize maps a raw description to its clean label and category.
func (rs *RuleSet) Sanitize(raw string) Match {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	if rs != nil {
		for i, cr := range rs.rules {
			for _, m := range cr.matchers {
				if !m(trimmed, upper) {
					continue
				}

				out := Match{Clean: cr.rule.Target, Matched: true, Rule: i}
				if cr.rule.Category != "" {
					out.Category = new(cr.rule.Category)
				}

				return out
			}
		}
	}

	out := Match{Rule: -1}
	if rs == nil || rs.fallbackToRaw {
		out.Clean = trimmed
	}

	return out
}

// Len is the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}

	return len(rs.rules)
}
