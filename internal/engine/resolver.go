package engine

import "math"

// Confidence ranges per label
const (
	spamConfidenceMin       = 60
	spamConfidenceMax       = 100
	suspiciousConfidenceMin = 45
	suspiciousConfidenceMax = 84
	cleanConfidenceMin      = 50
	cleanConfidenceMax      = 95

	spamConfidenceSlope       = 1.5
	suspiciousConfidenceSlope = 2.0
	cleanConfidenceSlope      = 2.0

	riskScoreFactor = 2.5
	riskScoreMax    = 100
)

// Resolve turns a score breakdown into a Verdict
func Resolve(b ScoreBreakdown, cfg Config) Verdict {
	spamTotal := b.SpamTotal()
	combined := b.Combined()
	t := cfg.Thresholds

	v := Verdict{
		RiskScore: riskScore(combined),
		Flags:     capFlags(b.Flags),
	}

	switch {
	case spamTotal >= t.SpamTotal:
		v.Label = LabelSpam
		v.Category = VerdictScam
		// ties go to scam
		if b.Phishing > b.Spam {
			v.Category = VerdictPhishing
		}
		v.Confidence = confidence(spamConfidenceMin+spamConfidenceSlope*(spamTotal-t.SpamTotal),
			spamConfidenceMin, spamConfidenceMax)
	case combined >= t.CombinedSuspicious:
		v.Label = LabelSuspicious
		v.Category = VerdictPromotional
		v.Confidence = confidence(suspiciousConfidenceMin+suspiciousConfidenceSlope*(combined-t.CombinedSuspicious),
			suspiciousConfidenceMin, suspiciousConfidenceMax)
	default:
		v.Label = LabelClean
		v.Category = VerdictLegitimate
		v.Confidence = confidence(cleanConfidenceMax-cleanConfidenceSlope*combined,
			cleanConfidenceMin, cleanConfidenceMax)
	}
	return v
}

// emptyVerdict is returned for messages with no content at all
func emptyVerdict() Verdict {
	return Verdict{
		Label:      LabelClean,
		Category:   VerdictLegitimate,
		Confidence: cleanConfidenceMin,
		RiskScore:  0,
		Flags:      []string{},
	}
}

func riskScore(combined float64) int {
	return int(math.Min(math.Round(combined*riskScoreFactor), riskScoreMax))
}

// confidence clamps x to [lo,hi] and rounds to one decimal
func confidence(x, lo, hi float64) float64 {
	return math.Round(math.Max(lo, math.Min(hi, x))*10) / 10
}

func capFlags(flags []string) []string {
	n := len(flags)
	if n > MaxFlags {
		n = MaxFlags
	}
	out := make([]string, n)
	copy(out, flags[:n])
	return out
}
