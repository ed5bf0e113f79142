package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/threat-filter/internal/engine"
	"github.com/mikey/threat-filter/internal/utils"
	"github.com/mikey/threat-filter/internal/whitelist"
)

// ServiceOptions holds the tunables of the classifier service
type ServiceOptions struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	MaxBodySize      int
	BatchConcurrency int
}

// ClassifierService is the core service for threat classification
type ClassifierService struct {
	engine    *engine.Engine
	cache     CacheRepository
	allowlist *whitelist.Checker
	text      *utils.TextProcessor
	logger    *zap.Logger
	opts      ServiceOptions
}

// NewClassifierService creates a new classifier service. cache may be nil when
// caching is disabled.
func NewClassifierService(
	eng *engine.Engine,
	cache CacheRepository,
	allowlist *whitelist.Checker,
	text *utils.TextProcessor,
	logger *zap.Logger,
	opts ServiceOptions,
) *ClassifierService {
	if cache == nil {
		opts.CacheEnabled = false
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}
	return &ClassifierService{
		engine:    eng,
		cache:     cache,
		allowlist: allowlist,
		text:      text,
		logger:    logger,
		opts:      opts,
	}
}

// Engine returns the underlying classification engine
func (s *ClassifierService) Engine() *engine.Engine {
	return s.engine
}

// Classify produces a verdict for an email
func (s *ClassifierService) Classify(ctx context.Context, email *Email) (*ClassificationResult, error) {
	if email == nil {
		return nil, ErrNilEmail
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.allowlist != nil && s.allowlist.IsWhitelisted(email.From) {
		s.logger.Info("Skipping classification for allow-listed domain",
			zap.String("sender", email.From),
			zap.String("action", "allowlist_bypass"))
		return s.result(engine.Resolve(engine.ScoreBreakdown{}, s.engine.Config()), SourceAllowlist), nil
	}

	msg := email.Message()
	if s.text != nil {
		msg.Body = s.text.ProcessText(msg.Body, s.opts.MaxBodySize)
	}

	key := s.CacheKey(msg)
	if s.opts.CacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("Cache hit", zap.String("sender", email.From), zap.String("key", key))
			return s.result(entry.Verdict, SourceCache), nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Cache lookup failed", zap.Error(err))
		}
	}

	verdict := s.engine.Evaluate(msg)

	if s.opts.CacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Verdict:   verdict,
			LastSeen:  now,
			ExpiresAt: now.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.logger.Debug("Classified message",
		zap.String("sender", email.From),
		zap.String("label", string(verdict.Label)),
		zap.String("category", verdict.Category),
		zap.Int("risk_score", verdict.RiskScore),
		zap.Strings("flags", verdict.Flags))

	return s.result(verdict, SourceRules), nil
}

// ClassifyBatch classifies emails in parallel; results keep the input order
func (s *ClassifierService) ClassifyBatch(ctx context.Context, emails []*Email) ([]*ClassificationResult, error) {
	results := make([]*ClassificationResult, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)

	for i, email := range emails {
		g.Go(func() error {
			res, err := s.Classify(gctx, email)
			if err != nil {
				return fmt.Errorf("email %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// IsSpam reports whether a result carries the spam label
func (s *ClassifierService) IsSpam(result *ClassificationResult) bool {
	return result != nil && result.Verdict.Label == engine.LabelSpam
}

// CacheKey derives the cache key for a message under the current rules and thresholds
func (s *ClassifierService) CacheKey(m engine.Message) string {
	t := s.engine.Config().Thresholds
	h := sha256.New()
	fmt.Fprintf(h, "%s|%g|%g\x00%s\x00%s\x00%s",
		s.engine.Rules().Fingerprint(), t.SpamTotal, t.CombinedSuspicious,
		m.Sender, m.Subject, m.Body)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *ClassifierService) result(v engine.Verdict, source string) *ClassificationResult {
	return &ClassificationResult{
		Verdict:      v,
		AnalyzedAt:   time.Now(),
		Source:       source,
		ProcessingID: uuid.NewString(),
	}
}
