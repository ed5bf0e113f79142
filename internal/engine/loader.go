package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the YAML layout of an external rule store
//
//	include_defaults: true
//	rules:
//	  - id: crypto
//	    category: spam
//	    weight: 15
//	    flag: 'Crypto scam keyword: "{term}"'
//	    keywords: [bitcoin, "crypto wallet"]
//	  - id: body.shortener
//	    category: suspicious
//	    weight: 6
//	    match: {kind: pattern, field: body, pattern: 'bit\.ly/\w+'}
type ruleFile struct {
	IncludeDefaults bool      `yaml:"include_defaults"`
	Rules           []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Rule     `yaml:",inline"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// LoadRules parses a YAML rule document into a validated RuleSet
func LoadRules(r io.Reader) (*RuleSet, error) {
	var doc ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	var rules []Rule
	if doc.IncludeDefaults {
		rules = DefaultRules()
	}

	for i, d := range doc.Rules {
		if len(d.Keywords) == 0 {
			rules = append(rules, d.Rule)
			continue
		}
		if d.Matcher.Kind != "" {
			return nil, fmt.Errorf("%w: rule #%d (%q) sets both keywords and match", ErrInvalidRule, i+1, d.ID)
		}
		rules = append(rules, KeywordRules(d.ID, d.Category, d.Weight, d.Flag, d.Keywords...)...)
	}

	return NewRuleSet(rules...)
}

// LoadRulesFile reads a YAML rule document from disk
func LoadRulesFile(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	rs, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}
