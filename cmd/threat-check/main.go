package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/adapters/filter"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/di"
	"github.com/mikey/threat-filter/internal/engine"
	"github.com/mikey/threat-filter/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	service *core.ClassifierService,
	eng *engine.Engine,
) error {
	defer logger.Sync()

	raw, err := readInput(flags.InputFile, logger)
	if err != nil {
		return err
	}

	email, err := filter.ParseMessage(raw, "", nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var result *core.ClassificationResult
	if flags.JSON {
		result, err = service.Classify(ctx, email)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result, err = emailFilter.ProcessEmail(ctx, email); err != nil {
		return err
	}

	if flags.Explain {
		printBreakdown(os.Stdout, eng.Breakdown(email.Message()), result.Source)
	}
	return nil
}

func readInput(path string, logger *zap.Logger) ([]byte, error) {
	if path == "" {
		logger.Debug("Reading email from stdin")
		return io.ReadAll(os.Stdin)
	}

	logger.Debug("Reading email from file", zap.String("file", path))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return raw, nil
}

func printBreakdown(w io.Writer, b engine.ScoreBreakdown, source string) {
	fmt.Fprintf(w, "\n=== Score Breakdown ===\n")
	if source != core.SourceRules {
		fmt.Fprintf(w, "(verdict came from %s, rules shown for reference)\n", source)
	}
	fmt.Fprintf(w, "Spam: %g\n", b.Spam)
	fmt.Fprintf(w, "Phishing: %g\n", b.Phishing)
	fmt.Fprintf(w, "Suspicious: %g\n", b.Suspicious)
	fmt.Fprintf(w, "Spam total: %g\n", b.SpamTotal())
	fmt.Fprintf(w, "Combined: %g\n", b.Combined())
	for _, flag := range b.Flags {
		fmt.Fprintf(w, "  - %s\n", flag)
	}
}
