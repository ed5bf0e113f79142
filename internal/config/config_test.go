package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	eng := cfg.GetEngine()
	assert.Equal(t, 35.0, eng.Thresholds.SpamTotal)
	assert.Equal(t, 15.0, eng.Thresholds.CombinedSuspicious)
	assert.Equal(t, 65536, eng.MaxBodySize)
	assert.Empty(t, eng.RulesFile)

	pf := cfg.GetPostfix()
	assert.Equal(t, "X-Threat-Label", pf.Headers.Label)
	assert.Equal(t, 10026, pf.Port)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.Equal(t, 24*time.Hour, cache.TTL)

	httpCfg, err := cfg.GetHTTP()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), httpCfg.MaxRequestBytes)
	assert.Equal(t, 10*time.Second, httpCfg.ReadTimeout)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  thresholds:
    spam_total: 50
    combined_suspicious: 25
  rules_file: /etc/threat-filter/rules.yaml
spam:
  whitelisted_domains: [company.example]
cache:
  type: sqlite
  ttl: 30m
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	eng := cfg.GetEngine()
	assert.Equal(t, 50.0, eng.Thresholds.SpamTotal)
	assert.Equal(t, 25.0, eng.Thresholds.CombinedSuspicious)
	assert.Equal(t, "/etc/threat-filter/rules.yaml", eng.RulesFile)
	assert.Equal(t, []string{"company.example"}, cfg.GetStringSlice("spam.whitelisted_domains"))

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cache.Type)
	assert.Equal(t, 30*time.Minute, cache.TTL)
}

func TestNewFromFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))
	t.Setenv("THREAT_FILTER_LOGGING_LEVEL", "debug")

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.GetString("logging.level"))
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetCache_InvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "soon")

	_, err := NewFromViper(v).GetCache()
	assert.Error(t, err)
}
