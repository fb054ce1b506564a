// # internal/core/config/loader.go
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalizeFilter(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when path is the
// default location and does not exist. Environment overrides are applied in
// both cases.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err != nil {
		if path != DefaultPath || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.DatabaseDir) == "" {
		cfg.Paths.DatabaseDir = "data/database"
	}
	if strings.TrimSpace(cfg.Paths.SessionsFile) == "" {
		cfg.Paths.SessionsFile = "test-reports/visual-tests-sessions.json"
	}
	if strings.TrimSpace(cfg.Paths.ResultsFile) == "" {
		cfg.Paths.ResultsFile = "test-reports/visual-tests-results.json"
	}
	if strings.TrimSpace(cfg.Paths.ReportFile) == "" {
		cfg.Paths.ReportFile = "test-reports/visual-tests-report.json"
	}

	if strings.TrimSpace(cfg.Screenshots.Extension) == "" {
		cfg.Screenshots.Extension = ".png"
	}
	if strings.TrimSpace(cfg.Screenshots.Branch) == "" {
		cfg.Screenshots.Branch = cfg.Report.BranchName
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout == 0 {
		cfg.DB.BusyTimeout = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Server.Address) == "" {
		cfg.Server.Address = "127.0.0.1:8686"
	}
	if cfg.Server.RequestsPerMinute == 0 {
		cfg.Server.RequestsPerMinute = 600
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 50
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "vreport"
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}
}

func normalizeFilter(cfg *Config) {
	cfg.Filter.IncludeComponents = compactPatterns(cfg.Filter.IncludeComponents)
	cfg.Filter.ExcludeComponents = compactPatterns(cfg.Filter.ExcludeComponents)
}

func compactPatterns(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
