package config

import (
	"fmt"
	"time"

	"github.com/mikey/threat-filter/internal/engine"
)

// EngineConfig represents the classification engine settings
type EngineConfig struct {
	RulesFile        string
	Thresholds       engine.Thresholds
	MaxBodySize      int
	BatchConcurrency int
}

// HeaderNames are the headers the Postfix filter writes
type HeaderNames struct {
	Label      string
	Category   string
	Score      string
	Confidence string
	Flags      string
}

// PostfixConfig represents the Postfix content filter settings
type PostfixConfig struct {
	ListenAddress string
	BlockSpam     bool
	Headers       HeaderNames
	Enabled       bool
	Address       string
	Port          int
	SubjectPrefix string
	ModifySubject bool
}

// HTTPConfig represents the JSON API settings
type HTTPConfig struct {
	ListenAddress   string
	MaxRequestBytes int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// CacheConfig represents the verdict cache settings
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// GetEngine returns the engine configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		RulesFile: c.GetString("engine.rules_file"),
		Thresholds: engine.Thresholds{
			SpamTotal:          c.GetFloat64("engine.thresholds.spam_total"),
			CombinedSuspicious: c.GetFloat64("engine.thresholds.combined_suspicious"),
		},
		MaxBodySize:      c.GetInt("engine.max_body_size"),
		BatchConcurrency: c.GetInt("engine.batch_concurrency"),
	}
}

// GetPostfix returns the Postfix filter configuration
func (c *Config) GetPostfix() PostfixConfig {
	return PostfixConfig{
		ListenAddress: c.GetString("server.listen_address"),
		BlockSpam:     c.GetBool("server.block_spam"),
		Headers: HeaderNames{
			Label:      c.GetString("server.headers.label"),
			Category:   c.GetString("server.headers.category"),
			Score:      c.GetString("server.headers.score"),
			Confidence: c.GetString("server.headers.confidence"),
			Flags:      c.GetString("server.headers.flags"),
		},
		Enabled:       c.GetBool("server.postfix.enabled"),
		Address:       c.GetString("server.postfix.address"),
		Port:          c.GetInt("server.postfix.port"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		ModifySubject: c.GetBool("server.modify_subject"),
	}
}

// GetHTTP returns the HTTP API configuration
func (c *Config) GetHTTP() (HTTPConfig, error) {
	read, err := c.GetDuration("server.http.read_timeout")
	if err != nil {
		return HTTPConfig{}, err
	}
	write, err := c.GetDuration("server.http.write_timeout")
	if err != nil {
		return HTTPConfig{}, err
	}
	return HTTPConfig{
		ListenAddress:   c.GetString("server.http.listen_address"),
		MaxRequestBytes: int64(c.GetInt("server.http.max_request_bytes")),
		ReadTimeout:     read,
		WriteTimeout:    write,
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	if ttl <= 0 {
		return CacheConfig{}, fmt.Errorf("cache.ttl must be positive, got %s", ttl)
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}
