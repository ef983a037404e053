// Package config resolves the tool configuration from viper-bound flags,
// config files and defaults into one validated struct.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultOutput       = "client.gen.go"
	DefaultPackage      = "api"
	DefaultCacheFile    = ".oasgen/cache.json"
	DefaultSpecPath     = ".oasgen/spec.json"
	DefaultInterval     = 30 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// Config holds the resolved options for oasgen.
type Config struct {
	// SpecURL is the HTTP location of the API description.
	SpecURL string

	// SpecFile is a local API description file; used when SpecURL is empty.
	SpecFile string

	// Output is the path of the generated artifact.
	Output string

	// Package is the Go package name of the generated artifact.
	Package string

	// SpecPath is where the watcher writes freshly fetched spec bytes
	// before regeneration runs.
	SpecPath string

	// CacheFile is where the change-detection record is persisted.
	CacheFile string

	// Interval is the watch poll interval.
	Interval time.Duration

	// FetchTimeout bounds each spec fetch.
	FetchTimeout time.Duration

	// RegenCommand, when set, runs regeneration as an external command
	// instead of in process.
	RegenCommand []string

	// Verbose enables debug logging.
	Verbose bool
}

// Load builds a Config from viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		SpecURL:      viper.GetString("spec_url"),
		SpecFile:     viper.GetString("spec_file"),
		Output:       viper.GetString("output"),
		Package:      viper.GetString("package"),
		SpecPath:     viper.GetString("spec_path"),
		CacheFile:    viper.GetString("cache_file"),
		Interval:     viper.GetDuration("interval"),
		FetchTimeout: viper.GetDuration("fetch_timeout"),
		RegenCommand: viper.GetStringSlice("regen_command"),
		Verbose:      viper.GetBool("verbose"),
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Package == "" {
		cfg.Package = DefaultPackage
	}
	if cfg.SpecPath == "" {
		cfg.SpecPath = DefaultSpecPath
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = DefaultCacheFile
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and resolves paths. Errors here are fatal
// at startup, before any loop begins.
func (c *Config) Validate() error {
	if c.SpecURL == "" && c.SpecFile == "" {
		return fmt.Errorf("either spec_url or spec_file must be set")
	}

	if !validPackageName(c.Package) {
		return fmt.Errorf("invalid package name: %q", c.Package)
	}

	for _, field := range []*string{&c.Output, &c.SpecPath, &c.CacheFile} {
		abs, err := filepath.Abs(*field)
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", *field, err)
		}
		*field = abs
	}

	if c.SpecFile != "" {
		abs, err := filepath.Abs(c.SpecFile)
		if err != nil {
			return fmt.Errorf("invalid spec file path: %w", err)
		}
		c.SpecFile = abs
	}

	return nil
}

func validPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case i > 0 && (r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
