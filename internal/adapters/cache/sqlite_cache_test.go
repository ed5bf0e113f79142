package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/threat-filter/internal/core"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t), 0)
	require.NoError(t, err)
	t.Cleanup(c.Stop)
	return c
}

func TestSQLiteCache_SetGet(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	entry := testEntry("k1", time.Hour)
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Verdict, got.Verdict)
	assert.Equal(t, entry.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	// Replacing an entry keeps a single row
	entry.Verdict.RiskScore = 7
	require.NoError(t, c.Set(ctx, entry))
	got, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Verdict.RiskScore)
}

func TestSQLiteCache_ExpiryAndCleanup(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("stale", -time.Minute)))
	require.NoError(t, c.Set(ctx, testEntry("live", time.Hour)))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))

	var n int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM verdict_cache`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteCache_Delete(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("k1", time.Hour)))
	require.NoError(t, c.Delete(ctx, "k1"))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}
