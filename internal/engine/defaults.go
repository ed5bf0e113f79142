package engine

// Default rule weights
const (
	WeightSenderToken  = 25
	WeightPhishing     = 20
	WeightSpamKeyword  = 15
	WeightNoReplyClick = 10
	WeightCapitals     = 10
	WeightPromotional  = 8
	WeightExclamation  = 5
)

var (
	spamKeywords = []string{
		"lottery", "prize", "winner", "urgent", "guarantee", "congratulations",
		"million dollars", "cash bonus", "100% free", "risk-free", "act immediately",
		"wire transfer",
	}

	phishingPhrases = []string{
		"verify your account", "confirm identity", "confirm your identity",
		"bank account", "security alert", "update your password",
		"account suspended", "account has been suspended", "login credentials",
		"update your payment", "unusual sign-in activity", "social security number",
	}

	promotionalKeywords = []string{
		"offer", "discount", "unsubscribe", "click here", "limited time",
		"free trial", "special promotion", "buy now", "act now",
	}

	badSenderTokens = []string{
		"fake", "scam", "spam", "fraud", "prince", "winner", "lottery",
	}

	noReplySenderTokens = []string{
		"noreply", "no-reply", "donotreply", "do-not-reply", "automated", "mailer-daemon",
	}

	callToClick = []string{
		"click here", "click below", "click the link", "click this link", "tap here",
	}
)

// DefaultRules returns the built-in rule table in descending severity
func DefaultRules() []Rule {
	rules := []Rule{{
		ID:       "sender.bad_token",
		Category: CategorySpam,
		Weight:   WeightSenderToken,
		Matcher:  SenderContains(badSenderTokens...),
		Flag:     `Suspicious sender address contains "{term}"`,
	}}

	rules = append(rules, KeywordRules("phishing", CategoryPhishing, WeightPhishing,
		`Phishing phrase: "{term}"`, phishingPhrases...)...)
	rules = append(rules, KeywordRules("spam", CategorySpam, WeightSpamKeyword,
		`High-risk keyword: "{term}"`, spamKeywords...)...)

	rules = append(rules,
		Rule{
			ID:       "sender.noreply_call_to_click",
			Category: CategorySuspicious,
			Weight:   WeightNoReplyClick,
			Matcher: Matcher{
				Kind:        MatchSenderAndBody,
				SenderTerms: noReplySenderTokens,
				Terms:       callToClick,
			},
			Flag: `Automated sender asks to "{term}"`,
		},
		Rule{
			ID:       "structure.capitals",
			Category: CategorySpam,
			Weight:   WeightCapitals,
			Matcher:  Matcher{Kind: MatchUppercaseRatio, Ratio: 0.30, MinLength: 50},
			Flag:     "Excessive capital letters",
		},
		Rule{
			ID:       "structure.exclamations",
			Category: CategorySpam,
			Weight:   WeightExclamation,
			Matcher:  Matcher{Kind: MatchCharCount, Char: "!", Count: 3},
			Flag:     "Excessive exclamation marks",
		},
	)

	// Promotional terms raise suspicion without flagging.
	rules = append(rules, KeywordRules("promo", CategorySuspicious, WeightPromotional,
		"", promotionalKeywords...)...)

	return rules
}

var defaultRuleSet = MustRuleSet(DefaultRules()...)

// DefaultRuleSet returns the built-in RuleSet
func DefaultRuleSet() *RuleSet {
	return defaultRuleSet
}
