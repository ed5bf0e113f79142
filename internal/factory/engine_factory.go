package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

// EngineFactory creates the classification engine from configuration
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRuleSet loads the configured rules file, or the default rules when none is set
func (f *EngineFactory) CreateRuleSet() (*engine.RuleSet, error) {
	path := f.cfg.GetEngine().RulesFile
	if path == "" {
		return engine.DefaultRuleSet(), nil
	}

	rs, err := engine.LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Loaded rules file",
		zap.String("file", path),
		zap.Int("rules", rs.Len()),
		zap.String("fingerprint", rs.Fingerprint()))
	return rs, nil
}

// CreateEngine builds the engine from the rule set and thresholds
func (f *EngineFactory) CreateEngine() (*engine.Engine, error) {
	rs, err := f.CreateRuleSet()
	if err != nil {
		return nil, err
	}

	t := f.cfg.GetEngine().Thresholds
	ecfg, err := engine.NewConfig(t.SpamTotal, t.CombinedSuspicious)
	if err != nil {
		return nil, fmt.Errorf("invalid engine thresholds: %w", err)
	}

	return engine.New(rs, ecfg)
}

// ServiceOptions derives the classifier service options from configuration
func (f *EngineFactory) ServiceOptions() (core.ServiceOptions, error) {
	ec := f.cfg.GetEngine()
	cc, err := f.cfg.GetCache()
	if err != nil {
		return core.ServiceOptions{}, err
	}
	return core.ServiceOptions{
		CacheEnabled:     cc.Enabled,
		CacheTTL:         cc.TTL,
		MaxBodySize:      ec.MaxBodySize,
		BatchConcurrency: ec.BatchConcurrency,
	}, nil
}
