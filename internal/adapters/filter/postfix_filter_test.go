package filter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

type delivery struct {
	sender     string
	recipients []string
	data       string
}

func newTestPostfixFilter(t *testing.T, classifier core.Classifier, blockSpam bool) (*PostfixFilter, *[]delivery) {
	f := NewPostfixFilter(classifier, zaptest.NewLogger(t), config.PostfixConfig{
		ListenAddress: "127.0.0.1:0",
		BlockSpam:     blockSpam,
		Headers:       testHeaders,
		Enabled:       true,
		ModifySubject: true,
	})
	var sent []delivery
	f.deliver = func(sender string, recipients []string, data []byte) error {
		sent = append(sent, delivery{sender: sender, recipients: recipients, data: string(data)})
		return nil
	}
	return f, &sent
}

func TestPostfixFilter_DefaultSubjectPrefix(t *testing.T) {
	f, _ := newTestPostfixFilter(t, rulesClassifier(), false)
	assert.Equal(t, defaultSubjectPrefix, f.cfg.SubjectPrefix)
}

func TestPostfixFilter_RejectsSpam(t *testing.T) {
	f, sent := newTestPostfixFilter(t, rulesClassifier(), true)

	err := f.filterMessage("draw@promo.example", []string{"bob@company.example"}, []byte(prizeScamRaw))

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 550, smtpErr.Code)
	assert.Equal(t, smtp.EnhancedCode{5, 7, 1}, smtpErr.EnhancedCode)
	assert.Empty(t, *sent)
}

func TestPostfixFilter_TagsSpamWhenNotBlocking(t *testing.T) {
	f, sent := newTestPostfixFilter(t, rulesClassifier(), false)

	err := f.filterMessage("draw@promo.example", []string{"bob@company.example"}, []byte(prizeScamRaw))
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	d := (*sent)[0]
	assert.Equal(t, "draw@promo.example", d.sender)
	assert.Equal(t, []string{"bob@company.example"}, d.recipients)
	assert.True(t, strings.HasPrefix(d.data, "X-Threat-Label: spam\r\n"))
	assert.Contains(t, d.data, "X-Threat-Category: scam\r\n")
	assert.Contains(t, d.data, "Subject: "+defaultSubjectPrefix+"URGENT: Claim your prize\r\n")
}

func TestPostfixFilter_PassesCleanMail(t *testing.T) {
	f, sent := newTestPostfixFilter(t, rulesClassifier(), true)

	err := f.filterMessage("alice@company.example", []string{"team@company.example"}, []byte(meetingRaw))
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].data, "X-Threat-Label: clean\r\n")
	assert.Contains(t, (*sent)[0].data, "Subject: Meeting reminder for tomorrow\r\n")
}

func TestPostfixFilter_ClassifierErrorPassesThrough(t *testing.T) {
	f, sent := newTestPostfixFilter(t, failingClassifier(), true)

	err := f.filterMessage("draw@promo.example", []string{"bob@company.example"}, []byte(prizeScamRaw))
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].data, "X-Threat-Label: clean\r\n")
	assert.Contains(t, (*sent)[0].data, "X-Threat-Analysis-Error: classifier unavailable\r\n")
}

func TestPostfixFilter_DeliveryError(t *testing.T) {
	f, _ := newTestPostfixFilter(t, rulesClassifier(), false)
	f.deliver = func(string, []string, []byte) error { return errors.New("connection refused") }

	err := f.filterMessage("alice@company.example", []string{"team@company.example"}, []byte(meetingRaw))
	assert.EqualError(t, err, "connection refused")
}

func TestPostfixFilter_Session(t *testing.T) {
	f, sent := newTestPostfixFilter(t, rulesClassifier(), false)
	session, err := (&smtpBackend{filter: f}).NewSession(nil)
	require.NoError(t, err)

	require.NoError(t, session.Mail("alice@company.example", nil))
	require.NoError(t, session.Rcpt("team@company.example", nil))
	require.NoError(t, session.Rcpt("bob@company.example", nil))
	require.NoError(t, session.Data(strings.NewReader(meetingRaw)))

	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"team@company.example", "bob@company.example"}, (*sent)[0].recipients)

	session.Reset()
	s := session.(*smtpSession)
	assert.Empty(t, s.sender)
	assert.Empty(t, s.recipients)
	assert.NoError(t, session.Logout())
}

func TestPostfixFilter_ProcessEmail(t *testing.T) {
	f, _ := newTestPostfixFilter(t, rulesClassifier(), false)

	res, err := f.ProcessEmail(context.Background(), &core.Email{
		From:    "prince@winner.example",
		Subject: "Business proposal",
		Body:    "Please send your bank account details so we can confirm identity.",
	})
	require.NoError(t, err)
	assert.Equal(t, engine.LabelSpam, res.Verdict.Label)
	assert.Equal(t, engine.VerdictPhishing, res.Verdict.Category)
}

func TestPostfixFilter_StartStop(t *testing.T) {
	f, _ := newTestPostfixFilter(t, rulesClassifier(), false)
	require.NoError(t, f.Start())
	assert.NoError(t, f.Stop())
}
