package core

import (
	"time"

	"github.com/mikey/threat-filter/internal/engine"
)

// Email represents an email message as seen by the filters
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Message converts the email into the engine's input form
func (e *Email) Message() engine.Message {
	return engine.Message{
		Sender:  e.From,
		Subject: e.Subject,
		Body:    e.Body,
	}
}

// Result sources
const (
	SourceRules     = "rules"
	SourceCache     = "cache"
	SourceAllowlist = "allowlist"
)

// ClassificationResult represents the result of classifying an email
type ClassificationResult struct {
	Verdict      engine.Verdict `json:"verdict"`
	AnalyzedAt   time.Time      `json:"analyzed_at"`
	Source       string         `json:"source"`
	ProcessingID string         `json:"processing_id"`
}

// CacheEntry is a stored verdict keyed by message content
type CacheEntry struct {
	Key       string
	Verdict   engine.Verdict
	LastSeen  time.Time
	ExpiresAt time.Time
}
