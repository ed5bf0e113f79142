package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/factory"
	"github.com/mikey/threat-filter/internal/logging"
	"github.com/mikey/threat-filter/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Engine flags
	RulesFile           string
	SpamThreshold       float64
	SuspiciousThreshold float64
	MaxBodySize         int
	Whitelist           string

	// Output flags
	JSON    bool
	Explain bool

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string

	// set records the flags given explicitly on the command line
	set map[string]bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := registerFlags(flag.CommandLine)
	flag.Parse()
	flags.collect(flag.CommandLine)
	return flags
}

// parseFlags parses args against a fresh flag set
func parseFlags(args []string) (*CLIFlags, error) {
	fs := flag.NewFlagSet("threat-check", flag.ContinueOnError)
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.collect(fs)
	return flags, nil
}

func registerFlags(fs *flag.FlagSet) *CLIFlags {
	flags := &CLIFlags{set: make(map[string]bool)}

	// Engine flags
	fs.StringVar(&flags.RulesFile, "rules", "", "YAML rules file (default rule set if not specified)")
	fs.Float64Var(&flags.SpamThreshold, "threshold-spam", 35, "Spam + phishing score at which a message is spam")
	fs.Float64Var(&flags.SuspiciousThreshold, "threshold-suspicious", 15, "Combined score at which a message is suspicious")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 65536, "Maximum email body size to classify")
	fs.StringVar(&flags.Whitelist, "whitelist", "", "Comma-separated list of whitelisted domains")

	// Output flags
	fs.BoolVar(&flags.JSON, "json", false, "Print the verdict as JSON")
	fs.BoolVar(&flags.Explain, "explain", false, "Print the per-category score breakdown")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (explicit flags take precedence)")

	return flags
}

func (f *CLIFlags) collect(fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return configFromFlags(flags, logger)
	}); err != nil {
		return nil, err
	}

	// No cache for the CLI
	if err := container.Provide(func() core.CacheRepository { return nil }); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
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

// configFromFlags loads the config file when one is given and applies the
// command line flags over it. Without a file, every flag applies.
func configFromFlags(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	v := config.NewEmptyViper()
	explicit := func(name string) bool { return true }

	if flags.ConfigFile != "" {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		v = cfg.GetViper()
		explicit = func(name string) bool { return flags.set[name] }
	}

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cache.enabled", false)

	if explicit("rules") {
		v.Set("engine.rules_file", flags.RulesFile)
	}
	if explicit("threshold-spam") {
		v.Set("engine.thresholds.spam_total", flags.SpamThreshold)
	}
	if explicit("threshold-suspicious") {
		v.Set("engine.thresholds.combined_suspicious", flags.SuspiciousThreshold)
	}
	if explicit("max-body-size") {
		v.Set("engine.max_body_size", flags.MaxBodySize)
	}
	if explicit("whitelist") {
		v.Set("spam.whitelisted_domains", splitDomains(flags.Whitelist))
	}

	return config.NewFromViper(v), nil
}

func splitDomains(list string) []string {
	domains := []string{}
	for _, d := range strings.Split(list, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}
