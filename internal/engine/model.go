package engine

// Message is the input to a classification call
type Message struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// IsEmpty reports whether every field is blank
func (m Message) IsEmpty() bool {
	return isBlank(m.Sender) && isBlank(m.Subject) && isBlank(m.Body)
}

// Label is the final classification of a message
type Label string

const (
	LabelClean      Label = "clean"
	LabelSuspicious Label = "suspicious"
	LabelSpam       Label = "spam"
)

// severity orders labels from least to most severe
func (l Label) severity() int {
	switch l {
	case LabelSpam:
		return 2
	case LabelSuspicious:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether l is as severe as other or more
func (l Label) AtLeast(other Label) bool {
	return l.severity() >= other.severity()
}

// Verdict categories reported alongside the label
const (
	VerdictLegitimate  = "legitimate"
	VerdictPromotional = "promotional"
	VerdictScam        = "scam"
	VerdictPhishing    = "phishing"
)

// MaxFlags is the number of flags kept on a Verdict
const MaxFlags = 5

// Verdict is the result of classifying a single Message
type Verdict struct {
	Label      Label    `json:"label"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"` // 0 to 100
	RiskScore  int      `json:"riskScore"`  // 0 to 100
	Flags      []string `json:"flags"`
}

// ScoreBreakdown holds the per-category totals produced by the rule evaluator
type ScoreBreakdown struct {
	Spam       float64  `json:"spam"`
	Phishing   float64  `json:"phishing"`
	Suspicious float64  `json:"suspicious"`
	Flags      []string `json:"flags"`
}

// Score returns the accumulated score for a category
func (b ScoreBreakdown) Score(c Category) float64 {
	switch c {
	case CategorySpam:
		return b.Spam
	case CategoryPhishing:
		return b.Phishing
	case CategorySuspicious:
		return b.Suspicious
	default:
		return 0
	}
}

// SpamTotal is the spam score plus the phishing score
func (b ScoreBreakdown) SpamTotal() float64 {
	return b.Spam + b.Phishing
}

// Combined is the sum of every category
func (b ScoreBreakdown) Combined() float64 {
	return b.SpamTotal() + b.Suspicious
}

func (b *ScoreBreakdown) add(c Category, weight float64) {
	switch c {
	case CategorySpam:
		b.Spam += weight
	case CategoryPhishing:
		b.Phishing += weight
	case CategorySuspicious:
		b.Suspicious += weight
	}
}
