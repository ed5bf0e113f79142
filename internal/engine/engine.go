// Package engine implements the rule-based content threat classifier.
//
// A classification is a pure function of the message, the RuleSet and the
// Config: Normalize, EvaluateRules and Resolve run in sequence and nothing is
// retained between calls, so Evaluate is safe for concurrent use.
package engine

// Evaluate classifies a message. It never fails; a nil RuleSet behaves as an
// empty one and a message with no content is clean.
func Evaluate(m Message, rs *RuleSet, cfg Config) Verdict {
	if m.IsEmpty() {
		return emptyVerdict()
	}
	return Resolve(EvaluateRules(Normalize(m), rs), cfg)
}

// Engine binds a RuleSet and Config together
type Engine struct {
	rules *RuleSet
	cfg   Config
}

// New validates cfg and returns an Engine. A nil rule set selects the defaults.
func New(rs *RuleSet, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rs == nil {
		rs = DefaultRuleSet()
	}
	return &Engine{rules: rs, cfg: cfg}, nil
}

// Evaluate classifies a message with the engine's rules and thresholds
func (e *Engine) Evaluate(m Message) Verdict {
	return Evaluate(m, e.rules, e.cfg)
}

// Breakdown returns the uncapped per-category scores for a message
func (e *Engine) Breakdown(m Message) ScoreBreakdown {
	return EvaluateRules(Normalize(m), e.rules)
}

// Rules returns the engine's RuleSet
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// Config returns the engine's thresholds
func (e *Engine) Config() Config {
	return e.cfg
}
