package engine

// EvaluateRules runs every rule against the normalized message
//
// Rules are evaluated unconditionally and in declaration order; a match adds
// the rule weight to its category and appends the rendered flag, if any.
func EvaluateRules(n Normalized, rs *RuleSet) ScoreBreakdown {
	b := ScoreBreakdown{Flags: []string{}}
	if rs == nil {
		return b
	}

	for _, r := range rs.rules {
		term, ok := r.Matcher.match(n)
		if !ok {
			continue
		}
		b.add(r.Category, r.Weight)
		if r.Flag != "" {
			b.Flags = append(b.Flags, r.render(term))
		}
	}
	return b
}
