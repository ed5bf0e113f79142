package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/core"
)

// CliFilter implements a command-line interface for threat classification
type CliFilter struct {
	classifier core.Classifier
	logger     *zap.Logger
	verbose    bool
	out        io.Writer
}

// NewCliFilter creates a new CLI filter writing to stdout
func NewCliFilter(classifier core.Classifier, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return NewCliFilterWriter(classifier, logger, verbose, os.Stdout), nil
}

// NewCliFilterWriter creates a CLI filter writing to out
func NewCliFilterWriter(classifier core.Classifier, logger *zap.Logger, verbose bool, out io.Writer) *CliFilter {
	return &CliFilter{
		classifier: classifier,
		logger:     logger,
		verbose:    verbose,
		out:        out,
	}
}

// ProcessEmail classifies an email and prints the verdict
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result, err := f.classifier.Classify(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	v := result.Verdict
	fmt.Fprintf(f.out, "\n=== Verdict ===\n")
	fmt.Fprintf(f.out, "Label: %s\n", v.Label)
	fmt.Fprintf(f.out, "Category: %s\n", v.Category)
	fmt.Fprintf(f.out, "Confidence: %.1f\n", v.Confidence)
	fmt.Fprintf(f.out, "Risk score: %d\n", v.RiskScore)
	if len(v.Flags) > 0 {
		fmt.Fprintf(f.out, "Flags:\n")
		for _, flag := range v.Flags {
			fmt.Fprintf(f.out, "  - %s\n", flag)
		}
	}
	fmt.Fprintf(f.out, "Source: %s\n", result.Source)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
