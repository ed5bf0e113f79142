package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// RuleSet is an ordered, validated and immutable collection of rules
//
// Declaration order matters: flags are emitted in this order and only the
// first MaxFlags survive, so higher-weight families should come first.
type RuleSet struct {
	rules       []Rule
	fingerprint string
}

// NewRuleSet validates rules and freezes them into a RuleSet
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	compiled := make([]Rule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))

	for _, r := range rules {
		c, err := r.compile()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, c.ID)
		}
		seen[c.ID] = struct{}{}
		compiled = append(compiled, c)
	}

	return &RuleSet{
		rules:       compiled,
		fingerprint: fingerprintRules(compiled),
	}, nil
}

// MustRuleSet is NewRuleSet for static rule tables; it panics on error
func MustRuleSet(rules ...Rule) *RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// With returns a new RuleSet with rules appended after the existing ones
func (rs *RuleSet) With(rules ...Rule) (*RuleSet, error) {
	return NewRuleSet(append(rs.Rules(), rules...)...)
}

// Rules returns a copy of the rules in declaration order
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		r.Matcher.Terms = slices.Clone(r.Matcher.Terms)
		r.Matcher.SenderTerms = slices.Clone(r.Matcher.SenderTerms)
		out[i] = r
	}
	return out
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Fingerprint is a stable digest of the rule data
func (rs *RuleSet) Fingerprint() string {
	if rs == nil {
		return fingerprintRules(nil)
	}
	return rs.fingerprint
}

func fingerprintRules(rules []Rule) string {
	h := sha256.New()
	for _, r := range rules {
		m := r.Matcher
		fmt.Fprintf(h, "%s|%s|%g|%s|%s|%q|%q|%q|%g|%d|%q|%d|%q\n",
			r.ID, r.Category, r.Weight, m.Kind, m.Field, m.Terms, m.SenderTerms,
			m.Pattern, m.Ratio, m.MinLength, m.Char, m.Count, r.Flag)
	}
	return hex.EncodeToString(h.Sum(nil))
}
