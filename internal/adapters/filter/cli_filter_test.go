package filter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

func TestCliFilter_ProcessEmail(t *testing.T) {
	var out bytes.Buffer
	f := NewCliFilterWriter(rulesClassifier(), zaptest.NewLogger(t), true, &out)

	res, err := f.ProcessEmail(context.Background(), &core.Email{
		From:    "draw@promo.example",
		To:      []string{"bob@company.example"},
		Subject: "URGENT: Claim your prize",
		Body:    "Congratulations winner, we guarantee payment.",
	})
	require.NoError(t, err)
	assert.Equal(t, engine.LabelSpam, res.Verdict.Label)

	text := out.String()
	assert.Contains(t, text, "From: draw@promo.example")
	assert.Contains(t, text, "Body preview:")
	assert.Contains(t, text, "Label: spam")
	assert.Contains(t, text, "Category: scam")
	assert.Contains(t, text, `  - High-risk keyword: "prize"`)
	assert.Contains(t, text, "Source: rules")
}

func TestCliFilter_Error(t *testing.T) {
	var out bytes.Buffer
	f := NewCliFilterWriter(failingClassifier(), zaptest.NewLogger(t), false, &out)

	_, err := f.ProcessEmail(context.Background(), &core.Email{From: "a@b.example"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Error: classifier unavailable")
	assert.NoError(t, f.Start())
	assert.NoError(t, f.Stop())
}
