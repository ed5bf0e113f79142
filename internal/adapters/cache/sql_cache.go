package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
	"go.uber.org/zap"
)

// sqlCache holds the behaviour shared by the SQL-backed caches. Timestamps are
// stored as unix seconds so expiry checks compare integers on every driver.
type sqlCache struct {
	db          *sql.DB
	logger      *zap.Logger
	name        string
	upsertQuery string
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func newSQLCache(db *sql.DB, logger *zap.Logger, name, upsertQuery string, cleanupFreq time.Duration) *sqlCache {
	c := &sqlCache{
		db:          db,
		logger:      logger,
		name:        name,
		upsertQuery: upsertQuery,
		stopCh:      make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go startCleanupTask(c, cleanupFreq, c.stopCh, logger)
	}
	return c
}

// Get retrieves a live entry for a key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		label, category, flags string
		confidence             float64
		riskScore              int
		lastSeen, expiresAt    int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT label, category, confidence, risk_score, flags, last_seen, expires_at
		FROM verdict_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().Unix()).Scan(&label, &category, &confidence, &riskScore, &flags, &lastSeen, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query %s cache: %w", c.name, err)
	}

	decoded, err := decodeFlags(flags)
	if err != nil {
		return nil, err
	}

	return &core.CacheEntry{
		Key: key,
		Verdict: engine.Verdict{
			Label:      engine.Label(label),
			Category:   category,
			Confidence: confidence,
			RiskScore:  riskScore,
			Flags:      decoded,
		},
		LastSeen:  time.Unix(lastSeen, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	flags, err := encodeFlags(entry.Verdict.Flags)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, c.upsertQuery,
		entry.Key,
		string(entry.Verdict.Label),
		entry.Verdict.Category,
		entry.Verdict.Confidence,
		entry.Verdict.RiskScore,
		flags,
		entry.LastSeen.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s cache entry: %w", c.name, err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM verdict_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM verdict_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("cache", c.name),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("cache", c.name), zap.Error(err))
		}
	})
}
