package sanitize

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// MatchMode selects how a rule's patterns are compared with a description.
type MatchMode string

const (
	MatchContains MatchMode = "contains"
	MatchRegex    MatchMode = "regex"
	MatchExact    MatchMode = "exact"
)

// Rule maps descriptions matching any of Patterns to Target.
type Rule struct {
	Patterns      []string  `toml:"patterns"`
	Target        string    `toml:"target"`
	Category      string    `toml:"category"`
	Match         MatchMode `toml:"match"`
	CaseSensitive bool      `toml:"case_sensitive"`
}

// File is the on-disk rules document.
type File struct {
	// FallbackToRaw keeps the trimmed raw description as the clean label when
	// no rule matches. Defaults to true.
	FallbackToRaw *bool  `toml:"fallback_to_raw"`
	Rules         []Rule `toml:"rules"`
}

// Diagnostic reports a rule pattern that can never match.
type Diagnostic struct {
	Rule    int
	Target  string
	Pattern string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("rule %d (%s): pattern %q: %s", d.Rule, d.Target, d.Pattern, d.Message)
}

// LoadRules reads and compiles the rules file at path.
func LoadRules(path string) (*RuleSet, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rules: %w", err)
	}

	return ParseRules(string(data))
}

// ParseRules decodes a TOML rules document and compiles it.
func ParseRules(data string) (*RuleSet, []Diagnostic, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, nil, fmt.Errorf("decode rules: %w", err)
	}

	fallback := f.FallbackToRaw == nil || *f.FallbackToRaw
	rs, diags := Compile(f.Rules, fallback)

	return rs, diags, nil
}

type matcher func(trimmed, upper string) bool

type compiledRule struct {
	rule     Rule
	matchers []matcher
}

// Compile builds a rule set once so that sanitizing a batch never re-normalizes
// or re-compiles patterns. Patterns that cannot match (invalid regex, empty
// needle, unknown mode) are reported and left out.
func Compile(rules []Rule, fallbackToRaw bool) (*RuleSet, []Diagnostic) {
	rs := &RuleSet{fallbackToRaw: fallbackToRaw, rules: make([]compiledRule, 0, len(rules))}

	var diags []Diagnostic

	for i, r := range rules {
		if r.Match == "" {
			r.Match = MatchContains
		}

		cr := compiledRule{rule: r}

		for _, p := range r.Patterns {
			m, err := compilePattern(r, p)
			if err != nil {
				diags = append(diags, Diagnostic{Rule: i, Target: r.Target, Pattern: p, Message: err.Error()})
				continue
			}

			cr.matchers = append(cr.matchers, m)
		}

		if len(r.Patterns) == 0 {
			diags = append(diags, Diagnostic{Rule: i, Target: r.Target, Message: "rule has no patterns"})
		}

		rs.rules = append(rs.rules, cr)
	}

	return rs, diags
}

func compilePattern(r Rule, pattern string) (matcher, error) {
	switch r.Match {
	case MatchContains, MatchExact:
		if strings.TrimSpace(pattern) == "" {
			return nil, fmt.Errorf("empty pattern")
		}

		needle := strings.TrimSpace(pattern)
		if !r.CaseSensitive {
			needle = strings.ToUpper(needle)
		}

		fold := !r.CaseSensitive
		exact := r.Match == MatchExact

		return func(trimmed, upper string) bool {
			subject := trimmed
			if fold {
				subject = upper
			}

			if exact {
				return subject == needle
			}

			return strings.Contains(subject, needle)
		}, nil
	case MatchRegex:
		expr := pattern
		if !r.CaseSensitive {
			expr = "(?i)" + expr
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}

		return func(trimmed, _ string) bool {
			return re.MatchString(trimmed)
		}, nil
	}

	return nil, fmt.Errorf("unknown match mode %q", r.Match)
}
