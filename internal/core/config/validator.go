package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateScreenshots,
		validateFilter,
		validateDatabase,
		validateServer,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScreenshots(cfg *Config) error {
	base := strings.TrimSpace(cfg.Screenshots.BaseURL)
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("screenshots.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("screenshots.base_url must use http or https, got %q", base)
	}
	if strings.ContainsAny(cfg.Screenshots.Extension, "/?#") {
		return fmt.Errorf("screenshots.extension must be a file extension, got %q", cfg.Screenshots.Extension)
	}
	return nil
}

func validateFilter(cfg *Config) error {
	for i, p := range cfg.Filter.IncludeComponents {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("filter.include_components[%d] is invalid: %w", i, err)
		}
	}
	for i, p := range cfg.Filter.ExcludeComponents {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("filter.exclude_components[%d] is invalid: %w", i, err)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if cfg.DB.BusyTimeout < 0 {
		return fmt.Errorf("db.busy_timeout must be >= 0")
	}
	return nil
}

func validateServer(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.Address); err != nil {
		return fmt.Errorf("server.address must be host:port, got %q", cfg.Server.Address)
	}
	if cfg.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("server.requests_per_minute must be >= 0")
	}
	if cfg.Server.Burst <= 0 {
		return fmt.Errorf("server.burst must be > 0")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled")
	}
	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be within [0, 1]")
	}
	return nil
}
