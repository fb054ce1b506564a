package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: VREPORT_[SECTION]_[KEY] (e.g., VREPORT_SERVER_ADDRESS). The CI
// variables read by the report publisher (PR_NUMBER, BRANCH_NAME, ...) are
// honoured too and lose against the VREPORT_ form.
func ApplyEnvOverrides(cfg *Config) {
	// CI
	setEnvString(&cfg.Report.RepositoryOwner, "REPOSITORY_OWNER")
	setEnvString(&cfg.Report.RepositoryName, "REPOSITORY_NAME")
	setEnvString(&cfg.Report.PRNumber, "PR_NUMBER")
	setEnvString(&cfg.Report.WorkflowID, "WORKFLOW_ID")
	setEnvString(&cfg.Report.BranchName, "BRANCH_NAME")
	setEnvString(&cfg.Report.ExpectationCommit, "EXPECTATION_COMMIT_REFERENCE")
	setEnvString(&cfg.Report.ActualCommit, "ACTUAL_COMMIT_REFERENCE")
	if host, ok := os.LookupEnv("CELLAR_HOST"); ok && strings.TrimSpace(cfg.Screenshots.BaseURL) == "" {
		cfg.Screenshots.BaseURL = "https://clever-components-visual-tests." + strings.TrimSpace(host)
	}

	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "VREPORT_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "VREPORT_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "VREPORT_PATHS_DATABASE_DIR")
	setEnvString(&cfg.Paths.SessionsFile, "VREPORT_PATHS_SESSIONS_FILE")
	setEnvString(&cfg.Paths.ResultsFile, "VREPORT_PATHS_RESULTS_FILE")
	setEnvString(&cfg.Paths.ReportFile, "VREPORT_PATHS_REPORT_FILE")

	// Screenshots
	setEnvString(&cfg.Screenshots.BaseURL, "VREPORT_SCREENSHOTS_BASE_URL")
	setEnvString(&cfg.Screenshots.Branch, "VREPORT_SCREENSHOTS_BRANCH")
	setEnvString(&cfg.Screenshots.Extension, "VREPORT_SCREENSHOTS_EXTENSION")

	// Report
	setEnvString(&cfg.Report.RepositoryOwner, "VREPORT_REPORT_REPOSITORY_OWNER")
	setEnvString(&cfg.Report.RepositoryName, "VREPORT_REPORT_REPOSITORY_NAME")
	setEnvString(&cfg.Report.PRNumber, "VREPORT_REPORT_PR_NUMBER")
	setEnvString(&cfg.Report.WorkflowID, "VREPORT_REPORT_WORKFLOW_ID")
	setEnvString(&cfg.Report.BranchName, "VREPORT_REPORT_BRANCH_NAME")
	setEnvString(&cfg.Report.ExpectationCommit, "VREPORT_REPORT_EXPECTATION_COMMIT")
	setEnvString(&cfg.Report.ExpectationUpdated, "VREPORT_REPORT_EXPECTATION_UPDATED")
	setEnvString(&cfg.Report.ActualCommit, "VREPORT_REPORT_ACTUAL_COMMIT")
	setEnvString(&cfg.Report.ActualUpdated, "VREPORT_REPORT_ACTUAL_UPDATED")

	// Aggregate
	setEnvBool(&cfg.Aggregate.UpdateExpectation, "VREPORT_AGGREGATE_UPDATE_EXPECTATION")

	// Database
	setEnvBool(&cfg.DB.Enabled, "VREPORT_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "VREPORT_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "VREPORT_DB_BUSY_TIMEOUT")

	// Server
	setEnvString(&cfg.Server.Address, "VREPORT_SERVER_ADDRESS")
	setEnvInt(&cfg.Server.RequestsPerMinute, "VREPORT_SERVER_REQUESTS_PER_MINUTE")
	setEnvInt(&cfg.Server.Burst, "VREPORT_SERVER_BURST")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "VREPORT_WATCH_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.EnableMetrics, "VREPORT_OBSERVABILITY_ENABLE_METRICS")
	setEnvBool(&cfg.Observability.EnableTracing, "VREPORT_OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "VREPORT_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvFloat64(&cfg.Observability.SampleRatio, "VREPORT_OBSERVABILITY_SAMPLE_RATIO")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
