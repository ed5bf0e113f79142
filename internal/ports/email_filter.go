package ports

import (
	"context"

	"github.com/mikey/threat-filter/internal/core"
)

// EmailFilter defines the interface for the message front ends
type EmailFilter interface {
	// ProcessEmail classifies an email and returns the result
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
