package config

import "time"

const DefaultPath = "data/config/vreport.toml"

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Screenshots   Screenshots   `toml:"screenshots"`
	Report        Report        `toml:"report"`
	Filter        Filter        `toml:"filter"`
	Aggregate     Aggregate     `toml:"aggregate"`
	DB            Database      `toml:"db"`
	Server        Server        `toml:"server"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot  string `toml:"project_root"`
	StateDir     string `toml:"state_dir"`
	DatabaseDir  string `toml:"database_dir"`
	SessionsFile string `toml:"sessions_file"`
	ResultsFile  string `toml:"results_file"`
	ReportFile   string `toml:"report_file"`
}

type Screenshots struct {
	BaseURL   string `toml:"base_url"`
	Branch    string `toml:"branch"`
	Extension string `toml:"extension"`
}

// Report holds the envelope metadata of a published report. CI usually
// supplies it through the environment.
type Report struct {
	RepositoryOwner    string `toml:"repository_owner"`
	RepositoryName     string `toml:"repository_name"`
	PRNumber           string `toml:"pr_number"`
	WorkflowID         string `toml:"workflow_id"`
	BranchName         string `toml:"branch_name"`
	ExpectationCommit  string `toml:"expectation_commit"`
	ExpectationUpdated string `toml:"expectation_updated"`
	ActualCommit       string `toml:"actual_commit"`
	ActualUpdated      string `toml:"actual_updated"`
}

type Filter struct {
	IncludeComponents []string `toml:"include_components"`
	ExcludeComponents []string `toml:"exclude_components"`
}

type Aggregate struct {
	// UpdateExpectation marks a run that refreshes expectation screenshots;
	// such runs produce no report.
	UpdateExpectation bool `toml:"update_expectation"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Server struct {
	Address           string        `toml:"address"`
	RequestsPerMinute int           `toml:"requests_per_minute"`
	Burst             int           `toml:"burst"`
	AllowedOrigins    []string      `toml:"allowed_origins"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	EnableMetrics bool    `toml:"enable_metrics"`
	EnableTracing bool    `toml:"enable_tracing"`
	OTLPEndpoint  string  `toml:"otlp_endpoint"`
	OTLPInsecure  bool    `toml:"otlp_insecure"`
	ServiceName   string  `toml:"service_name"`
	SampleRatio   float64 `toml:"sample_ratio"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
