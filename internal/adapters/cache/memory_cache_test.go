package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

func testEntry(key string, ttl time.Duration) *core.CacheEntry {
	return &core.CacheEntry{
		Key: key,
		Verdict: engine.Verdict{
			Label:      engine.LabelSpam,
			Category:   engine.VerdictScam,
			Confidence: 72.5,
			RiskScore:  100,
			Flags:      []string{"a", "b"},
		},
		LastSeen:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	entry := testEntry("k1", time.Hour)
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Verdict, got.Verdict)

	// stored entries are copies
	got.Verdict.Flags[0] = "mutated"
	again, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Verdict.Flags[0])

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, testEntry("old", -time.Minute)))
	require.NoError(t, c.Set(ctx, testEntry("new", time.Hour)))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, testEntry("k", time.Hour)))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	c.Stop()
	c.Stop()
}

func TestFlagsCodec(t *testing.T) {
	s, err := encodeFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	flags, err := decodeFlags(`["x","y"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, flags)

	_, err = decodeFlags("{")
	assert.Error(t, err)
}
