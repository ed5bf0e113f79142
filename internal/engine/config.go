package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when thresholds are negative or not finite
var ErrInvalidConfig = errors.New("invalid engine config")

// Default thresholds
const (
	DefaultSpamTotalThreshold          = 35
	DefaultCombinedSuspiciousThreshold = 15
)

// Thresholds control where the resolver draws the label boundaries
type Thresholds struct {
	// SpamTotal is compared against spam + phishing scores
	SpamTotal float64 `json:"spam_total" yaml:"spam_total"`
	// CombinedSuspicious is compared against the sum of every category
	CombinedSuspicious float64 `json:"combined_suspicious" yaml:"combined_suspicious"`
}

// Config is the caller-controlled part of the engine's behavior
type Config struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
}

// NewConfig validates thresholds and returns a Config
func NewConfig(spamTotal, combinedSuspicious float64) (Config, error) {
	cfg := Config{Thresholds: Thresholds{
		SpamTotal:          spamTotal,
		CombinedSuspicious: combinedSuspicious,
	}}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the built-in thresholds
func DefaultConfig() Config {
	return Config{Thresholds: Thresholds{
		SpamTotal:          DefaultSpamTotalThreshold,
		CombinedSuspicious: DefaultCombinedSuspiciousThreshold,
	}}
}

// Validate checks that both thresholds are finite and non-negative
func (c Config) Validate() error {
	if err := checkThreshold("spam_total", c.Thresholds.SpamTotal); err != nil {
		return err
	}
	return checkThreshold("combined_suspicious", c.Thresholds.CombinedSuspicious)
}

func checkThreshold(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: threshold %s must be a finite non-negative number, got %v", ErrInvalidConfig, name, v)
	}
	return nil
}
