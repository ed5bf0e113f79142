package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
	"github.com/mikey/threat-filter/internal/factory"
	"github.com/mikey/threat-filter/internal/logging"
	"github.com/mikey/threat-filter/internal/ports"
	"github.com/mikey/threat-filter/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	return buildContainer(config.New)
}

// buildContainer wires the daemon around the given config constructor
func buildContainer(newConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(newConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers the engine, its collaborators and the classifier
// service. The container must already provide the config and logger; the
// cache repository may be provided by the caller.
func provideService(container *dig.Container) error {
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register engine
	if err := container.Provide(func(f *factory.EngineFactory) (*engine.Engine, error) {
		return f.CreateEngine()
	}); err != nil {
		return err
	}

	// Register service options
	if err := container.Provide(func(f *factory.EngineFactory) (core.ServiceOptions, error) {
		return f.ServiceOptions()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register allow-list
	if err := container.Provide(factory.NewAllowlist); err != nil {
		return err
	}

	// Register classifier service
	if err := container.Provide(core.NewClassifierService); err != nil {
		return err
	}

	return container.Provide(func(s *core.ClassifierService) core.Classifier { return s })
}

// Close releases resources held by the container's cache repository
func Close(logger *zap.Logger, cacheRepo core.CacheRepository) {
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
		logger.Debug("Verdict cache stopped")
	}
}
