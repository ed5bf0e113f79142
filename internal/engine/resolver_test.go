package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		breakdown  ScoreBreakdown
		label      Label
		category   string
		confidence float64
		risk       int
	}{
		{"nothing", ScoreBreakdown{}, LabelClean, VerdictLegitimate, 95, 0},
		{"leftover suspicion", ScoreBreakdown{Suspicious: 8}, LabelClean, VerdictLegitimate, 79, 20},
		{"suspicious at threshold", ScoreBreakdown{Suspicious: 15}, LabelSuspicious, VerdictPromotional, 45, 38},
		{"suspicious ceiling", ScoreBreakdown{Spam: 30, Suspicious: 40}, LabelSuspicious, VerdictPromotional, 84, 100},
		{"spam at threshold", ScoreBreakdown{Spam: 35}, LabelSpam, VerdictScam, 60, 88},
		{"phishing dominant", ScoreBreakdown{Spam: 15, Phishing: 40}, LabelSpam, VerdictPhishing, 90, 100},
		{"tie goes to scam", ScoreBreakdown{Spam: 20, Phishing: 20}, LabelSpam, VerdictScam, 67.5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Resolve(tt.breakdown, cfg)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.category, v.Category)
			assert.InDelta(t, tt.confidence, v.Confidence, 0.001)
			assert.Equal(t, tt.risk, v.RiskScore)
		})
	}
}

func TestResolve_ConfidenceMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	prevSpam, prevSusp, prevClean := 0.0, 0.0, 101.0
	for s := 0.0; s <= 80; s += 0.5 {
		v := Resolve(ScoreBreakdown{Spam: 35 + s}, cfg)
		assert.GreaterOrEqual(t, v.Confidence, prevSpam)
		assert.True(t, v.Confidence >= 60 && v.Confidence <= 100)
		prevSpam = v.Confidence

		if 15+s < 35 {
			v = Resolve(ScoreBreakdown{Suspicious: 15 + s}, cfg)
			assert.Equal(t, LabelSuspicious, v.Label)
			assert.GreaterOrEqual(t, v.Confidence, prevSusp)
			assert.True(t, v.Confidence >= 45 && v.Confidence <= 84)
			prevSusp = v.Confidence
		}

		if s < 15 {
			v = Resolve(ScoreBreakdown{Suspicious: s}, cfg)
			assert.Equal(t, LabelClean, v.Label)
			assert.LessOrEqual(t, v.Confidence, prevClean)
			assert.True(t, v.Confidence >= 50 && v.Confidence <= 95)
			prevClean = v.Confidence
		}
	}
}

func TestResolve_FlagsTruncated(t *testing.T) {
	flags := []string{"a", "b", "c", "d", "e", "f", "g"}
	v := Resolve(ScoreBreakdown{Spam: 50, Flags: flags}, DefaultConfig())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, v.Flags)

	v.Flags[0] = "changed"
	assert.Equal(t, "a", flags[0])
}

func TestResolve_CustomThresholds(t *testing.T) {
	cfg, err := NewConfig(10, 5)
	assert.NoError(t, err)

	assert.Equal(t, LabelSpam, Resolve(ScoreBreakdown{Spam: 10}, cfg).Label)
	assert.Equal(t, LabelSuspicious, Resolve(ScoreBreakdown{Suspicious: 5}, cfg).Label)
	assert.Equal(t, LabelClean, Resolve(ScoreBreakdown{Suspicious: 4}, cfg).Label)
}

func TestNewConfig_Rejects(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	for _, pair := range [][2]float64{
		{-1, 10}, {10, -0.5},
		{nan, 10}, {10, nan},
		{inf, 10}, {10, inf},
		{-inf, 10}, {10, -inf},
	} {
		_, err := NewConfig(pair[0], pair[1])
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}
