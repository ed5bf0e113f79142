package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache connects to MySQL and ensures the cache table exists
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			cache_key CHAR(64) PRIMARY KEY,
			label VARCHAR(16) NOT NULL,
			category VARCHAR(32) NOT NULL,
			confidence DOUBLE NOT NULL,
			risk_score INT NOT NULL,
			flags TEXT NOT NULL,
			last_seen BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_verdict_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	upsert := `
		INSERT INTO verdict_cache
			(cache_key, label, category, confidence, risk_score, flags, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			label = VALUES(label),
			category = VALUES(category),
			confidence = VALUES(confidence),
			risk_score = VALUES(risk_score),
			flags = VALUES(flags),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`
	return &MySQLCache{sqlCache: newSQLCache(db, logger, "mysql", upsert, cleanupFreq)}, nil
}
