package engine

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidRule is returned when a rule definition is malformed
	ErrInvalidRule = errors.New("invalid rule")
	// ErrDuplicateRule is returned when two rules share an id
	ErrDuplicateRule = errors.New("duplicate rule id")
)

// Category is the score bucket a rule contributes to
type Category string

const (
	CategorySpam       Category = "spam"
	CategoryPhishing   Category = "phishing"
	CategorySuspicious Category = "suspicious"
)

func (c Category) valid() bool {
	switch c {
	case CategorySpam, CategoryPhishing, CategorySuspicious:
		return true
	}
	return false
}

// MatchKind selects how a Matcher tests a message
type MatchKind string

const (
	// MatchContains succeeds when any term is a substring of the field
	MatchContains MatchKind = "contains"
	// MatchPattern succeeds when the regular expression matches the field
	MatchPattern MatchKind = "pattern"
	// MatchSenderAndBody succeeds when the sender holds a sender term and the body holds a term
	MatchSenderAndBody MatchKind = "sender_and_body"
	// MatchUppercaseRatio succeeds when the raw body is long enough and mostly capitals
	MatchUppercaseRatio MatchKind = "uppercase_ratio"
	// MatchCharCount succeeds when a character occurs in the raw body more than Count times
	MatchCharCount MatchKind = "char_count"
)

// Field names the part of a message a Matcher inspects
type Field string

const (
	FieldText    Field = "text" // subject and body
	FieldSubject Field = "subject"
	FieldBody    Field = "body"
	FieldSender  Field = "sender"
)

// Matcher is the declarative predicate of a Rule
type Matcher struct {
	Kind        MatchKind `yaml:"kind" json:"kind"`
	Field       Field     `yaml:"field,omitempty" json:"field,omitempty"`
	Terms       []string  `yaml:"terms,omitempty" json:"terms,omitempty"`
	SenderTerms []string  `yaml:"sender_terms,omitempty" json:"sender_terms,omitempty"`
	Pattern     string    `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Ratio       float64   `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	MinLength   int       `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	Char        string    `yaml:"char,omitempty" json:"char,omitempty"`
	Count       int       `yaml:"count,omitempty" json:"count,omitempty"`

	re *regexp.Regexp
}

// Rule is a single weighted detection signal
//
// Flag is rendered when the rule matches; "{term}" is replaced by the matched
// term. A rule with an empty Flag still scores but emits nothing.
type Rule struct {
	ID       string   `yaml:"id" json:"id"`
	Category Category `yaml:"category" json:"category"`
	Weight   float64  `yaml:"weight" json:"weight"`
	Matcher  Matcher  `yaml:"match" json:"match"`
	Flag     string   `yaml:"flag,omitempty" json:"flag,omitempty"`
}

// Contains builds a substring matcher over the subject and body
func Contains(terms ...string) Matcher {
	return Matcher{Kind: MatchContains, Field: FieldText, Terms: terms}
}

// SenderContains builds a substring matcher over the sender address
func SenderContains(terms ...string) Matcher {
	return Matcher{Kind: MatchContains, Field: FieldSender, Terms: terms}
}

// KeywordRules expands a lexicon into one rule per term, so every distinct
// matched keyword scores and flags on its own. IDs are prefix.term with spaces
// replaced by underscores.
func KeywordRules(prefix string, category Category, weight float64, flag string, terms ...string) []Rule {
	rules := make([]Rule, 0, len(terms))
	for _, term := range terms {
		rules = append(rules, Rule{
			ID:       prefix + "." + strings.ReplaceAll(strings.ToLower(term), " ", "_"),
			Category: category,
			Weight:   weight,
			Matcher:  Contains(term),
			Flag:     flag,
		})
	}
	return rules
}

// compile validates r and returns the frozen copy used for evaluation
func (r Rule) compile() (Rule, error) {
	if strings.TrimSpace(r.ID) == "" {
		return r, fmt.Errorf("%w: empty id", ErrInvalidRule)
	}
	if !r.Category.valid() {
		return r, fmt.Errorf("%w %q: unknown category %q", ErrInvalidRule, r.ID, r.Category)
	}
	if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight < 0 {
		return r, fmt.Errorf("%w %q: weight must be a finite non-negative number, got %v", ErrInvalidRule, r.ID, r.Weight)
	}

	m, err := r.Matcher.compile()
	if err != nil {
		return r, fmt.Errorf("%w %q: %v", ErrInvalidRule, r.ID, err)
	}
	r.Matcher = m
	return r, nil
}

func (m Matcher) compile() (Matcher, error) {
	if m.Field == "" {
		m.Field = FieldText
	}
	switch m.Field {
	case FieldText, FieldSubject, FieldBody, FieldSender:
	default:
		return m, fmt.Errorf("unknown field %q", m.Field)
	}

	m.Terms = lowerTerms(m.Terms)
	m.SenderTerms = lowerTerms(m.SenderTerms)

	switch m.Kind {
	case MatchContains:
		if len(m.Terms) == 0 {
			return m, errors.New("contains matcher needs at least one term")
		}
	case MatchPattern:
		if m.Pattern == "" {
			return m, errors.New("pattern matcher needs a pattern")
		}
		re, err := regexp.Compile("(?i)" + m.Pattern)
		if err != nil {
			return m, fmt.Errorf("bad pattern: %w", err)
		}
		if re.MatchString("") {
			return m, fmt.Errorf("pattern %q matches the empty string", m.Pattern)
		}
		m.re = re
	case MatchSenderAndBody:
		if len(m.Terms) == 0 || len(m.SenderTerms) == 0 {
			return m, errors.New("sender_and_body matcher needs terms and sender_terms")
		}
	case MatchUppercaseRatio:
		if m.Ratio <= 0 || m.Ratio > 1 || math.IsNaN(m.Ratio) {
			return m, fmt.Errorf("ratio must be in (0,1], got %v", m.Ratio)
		}
		if m.MinLength < 0 {
			return m, fmt.Errorf("min_length must be non-negative, got %d", m.MinLength)
		}
	case MatchCharCount:
		if utf8.RuneCountInString(m.Char) != 1 {
			return m, fmt.Errorf("char must be a single character, got %q", m.Char)
		}
		if m.Count < 0 {
			return m, fmt.Errorf("count must be non-negative, got %d", m.Count)
		}
	default:
		return m, fmt.Errorf("unknown match kind %q", m.Kind)
	}
	return m, nil
}

// match tests the normalized message and returns the matched term, if any
func (m Matcher) match(n Normalized) (string, bool) {
	switch m.Kind {
	case MatchContains:
		return firstContained(n.Field(m.Field), m.Terms)
	case MatchPattern:
		if m.re == nil {
			return "", false
		}
		loc := m.re.FindStringIndex(n.Field(m.Field))
		if loc == nil {
			return "", false
		}
		return n.Field(m.Field)[loc[0]:loc[1]], true
	case MatchSenderAndBody:
		if _, ok := firstContained(n.Sender, m.SenderTerms); !ok {
			return "", false
		}
		return firstContained(n.Body, m.Terms)
	case MatchUppercaseRatio:
		length := utf8.RuneCountInString(n.RawBody)
		if length <= m.MinLength || length == 0 {
			return "", false
		}
		upper := 0
		for _, r := range n.RawBody {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		return "", float64(upper)/float64(length) > m.Ratio
	case MatchCharCount:
		return m.Char, strings.Count(n.RawBody, m.Char) > m.Count
	}
	return "", false
}

// render produces the flag text for a match
func (r Rule) render(term string) string {
	return strings.ReplaceAll(r.Flag, "{term}", term)
}

func firstContained(s string, terms []string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, term := range terms {
		if strings.Contains(s, term) {
			return term, true
		}
	}
	return "", false
}

func lowerTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = foldText(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
