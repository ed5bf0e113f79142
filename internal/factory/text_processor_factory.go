package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/utils"
	"github.com/mikey/threat-filter/internal/whitelist"
)

// TextProcessorFactory creates text processors
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// NewAllowlist builds the sender allow-list from spam.whitelisted_domains
func NewAllowlist(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
	domains := cfg.GetStringSlice("spam.whitelisted_domains")
	if len(domains) > 0 {
		logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
	}
	return whitelist.NewChecker(domains, logger)
}
