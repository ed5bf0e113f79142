package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/di"
	"github.com/mikey/threat-filter/internal/engine"
	"github.com/mikey/threat-filter/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	eng *engine.Engine,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	logger.Info("Classification engine ready",
		zap.Int("rules", eng.Rules().Len()),
		zap.String("fingerprint", eng.Rules().Fingerprint()),
		zap.Float64("spam_threshold", eng.Config().Thresholds.SpamTotal),
		zap.Float64("suspicious_threshold", eng.Config().Thresholds.CombinedSuspicious))

	// Start the filter
	if err := emailFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	di.Close(logger, cacheRepo)

	logger.Info("Shutdown complete")
	return nil
}
