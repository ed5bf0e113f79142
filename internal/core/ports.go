package core

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by a CacheRepository when no live entry exists
var ErrCacheMiss = errors.New("cache entry not found")

// ErrNilEmail is returned when a nil email is submitted for classification
var ErrNilEmail = errors.New("email is nil")

// Classifier produces verdicts for emails
type Classifier interface {
	Classify(ctx context.Context, email *Email) (*ClassificationResult, error)
}

// CacheRepository defines the interface for caching verdicts
type CacheRepository interface {
	// Get retrieves a live entry, or ErrCacheMiss
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
