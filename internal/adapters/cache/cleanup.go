package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type cleaner interface {
	Cleanup(ctx context.Context) error
}

// startCleanupTask periodically removes expired entries until stopCh closes
func startCleanupTask(c cleaner, freq time.Duration, stopCh <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}

func encodeFlags(flags []string) (string, error) {
	if flags == nil {
		flags = []string{}
	}
	b, err := json.Marshal(flags)
	if err != nil {
		return "", fmt.Errorf("failed to encode flags: %w", err)
	}
	return string(b), nil
}

func decodeFlags(s string) ([]string, error) {
	flags := []string{}
	if s == "" {
		return flags, nil
	}
	if err := json.Unmarshal([]byte(s), &flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	return flags, nil
}
