package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vreport.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[paths]
results_file = "out/results.json"

[screenshots]
base_url = "https://visual-tests.example.com"

[report]
repository_owner = "CleverCloud"
repository_name = "clever-components"
branch_name = "feat/menu"

[filter]
include_components = ["cc-button*", " ", "cc-button*"]
exclude_components = ["cc-button-group"]

[db]
enabled = true
busy_timeout = "5s"

[server]
address = "0.0.0.0:9000"
burst = 10

[watch]
debounce = "1s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Paths.ResultsFile != "out/results.json" {
		t.Errorf("Expected results file out/results.json, got %s", cfg.Paths.ResultsFile)
	}
	if cfg.Screenshots.Branch != "feat/menu" {
		t.Errorf("Expected screenshot branch to default to report branch, got %q", cfg.Screenshots.Branch)
	}
	if cfg.Screenshots.Extension != ".png" {
		t.Errorf("Expected .png extension, got %q", cfg.Screenshots.Extension)
	}
	if len(cfg.Filter.IncludeComponents) != 1 {
		t.Errorf("Expected include patterns to be compacted, got %v", cfg.Filter.IncludeComponents)
	}
	if cfg.DB.BusyTimeout != 5*time.Second {
		t.Errorf("Expected busy timeout 5s, got %v", cfg.DB.BusyTimeout)
	}
	if cfg.Server.Address != "0.0.0.0:9000" || cfg.Server.Burst != 10 {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.RequestsPerMinute != 600 {
		t.Errorf("Expected default rate 600, got %d", cfg.Server.RequestsPerMinute)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Paths.ResultsFile != "test-reports/visual-tests-results.json" {
		t.Errorf("Unexpected default results file %q", cfg.Paths.ResultsFile)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Expected default debounce 250ms, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "version = [")); err == nil {
		t.Error("Expected error for malformed toml")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"version = 3":                                    "unsupported config version",
		"[screenshots]\nbase_url = \"ftp://x\"":          "screenshots.base_url",
		"[filter]\ninclude_components = [\"cc-[x\"]":     "filter.include_components[0]",
		"[server]\naddress = \"nohostport\"":             "server.address",
		"[server]\nburst = -1":                           "server.burst",
		"[observability]\nenable_tracing = true":         "observability.otlp_endpoint",
		"[observability]\nsample_ratio = 2.0":            "observability.sample_ratio",
	}
	for content, want := range cases {
		_, err := Load(writeConfig(t, content))
		if err == nil {
			t.Errorf("Expected error for %q", content)
			continue
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error mentioning %q, got %v", want, err)
		}
	}
}

func TestLoadOrDefaultFallsBackOnlyForDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:8686" {
		t.Errorf("Unexpected default address %q", cfg.Server.Address)
	}

	if _, err := LoadOrDefault("custom.toml"); err == nil {
		t.Error("Expected error for a missing explicit path")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BRANCH_NAME", "ci-branch")
	t.Setenv("PR_NUMBER", "42")
	t.Setenv("VREPORT_REPORT_PR_NUMBER", "43")
	t.Setenv("CELLAR_HOST", "cellar.example.com")
	t.Setenv("VREPORT_SERVER_BURST", "7")
	t.Setenv("VREPORT_WATCH_DEBOUNCE", "2s")
	t.Setenv("VREPORT_DB_ENABLED", "TRUE")

	cfg := &Config{}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)

	if cfg.Report.BranchName != "ci-branch" || cfg.Screenshots.Branch != "ci-branch" {
		t.Errorf("Expected branch from CI env, got %q / %q", cfg.Report.BranchName, cfg.Screenshots.Branch)
	}
	if cfg.Report.PRNumber != "43" {
		t.Errorf("Expected VREPORT_ form to win, got %q", cfg.Report.PRNumber)
	}
	if cfg.Screenshots.BaseURL != "https://clever-components-visual-tests.cellar.example.com" {
		t.Errorf("Unexpected base url %q", cfg.Screenshots.BaseURL)
	}
	if cfg.Server.Burst != 7 || cfg.Watch.Debounce != 2*time.Second || !cfg.DB.Enabled {
		t.Errorf("Unexpected overrides: burst=%d debounce=%v db=%v", cfg.Server.Burst, cfg.Watch.Debounce, cfg.DB.Enabled)
	}
}
