package filter

import (
	"context"
	"errors"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

// classifierFunc adapts a function to core.Classifier
type classifierFunc func(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)

func (f classifierFunc) Classify(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f(ctx, email)
}

// rulesClassifier runs the default rule set directly
func rulesClassifier() core.Classifier {
	rs := engine.DefaultRuleSet()
	cfg := engine.DefaultConfig()
	return classifierFunc(func(_ context.Context, email *core.Email) (*core.ClassificationResult, error) {
		return &core.ClassificationResult{
			Verdict: engine.Evaluate(email.Message(), rs, cfg),
			Source:  core.SourceRules,
		}, nil
	})
}

func failingClassifier() core.Classifier {
	return classifierFunc(func(context.Context, *core.Email) (*core.ClassificationResult, error) {
		return nil, errors.New("classifier unavailable")
	})
}

const (
	prizeScamRaw = "From: Lucky Draw <draw@promo.example>\r\n" +
		"To: bob@company.example\r\n" +
		"Subject: URGENT: Claim your prize\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Congratulations winner, we guarantee payment of your lottery prize.\r\n"

	meetingRaw = "From: Alice <alice@company.example>\r\n" +
		"To: team@company.example\r\n" +
		"Subject: Meeting reminder for tomorrow\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Hi team, our project sync is scheduled for tomorrow at 10am.\r\n"

	multipartRaw = "From: security-alert@bank-verify.example\r\n" +
		"To: bob@company.example\r\n" +
		"Subject: Security alert\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Please verify your account after unusual sign-in activity.\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Please <b>verify your account</b> after unusual sign-in activity.</p>\r\n" +
		"--b1--\r\n"
)
