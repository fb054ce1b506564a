package ports

import (
	"context"

	"vreport/internal/data/history"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
)

// HistoryStore abstracts persistence of published report runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, run history.Run) error
	ListRuns(ctx context.Context, opts history.ListOptions) ([]history.Run, error)
	GetRun(ctx context.Context, id string) (history.Run, error)
	Close() error
}

// AggregateRequest reduces a raw sessions file into a results file.
type AggregateRequest struct {
	SessionsPath string
	OutputPath   string
	// UpdateExpectation skips the run, as expectation refreshes have no
	// failures worth reporting.
	UpdateExpectation bool
}

type AggregateResult struct {
	Skipped    bool
	OutputPath string
	Records    int
	Passed     int
	Missing    int
	Malformed  []results.SkippedEntry
	Duplicates []string
}

// PublishRequest wraps a results file into a report envelope.
type PublishRequest struct {
	ResultsPath string
	OutputPath  string
	Record      bool
}

type PublishResult struct {
	OutputPath string
	RunID      string
	Report     results.Report
}

// Snapshot is an immutable view of the loaded result set. Hosts receive a new
// one after every reload.
type Snapshot struct {
	Version    int64
	Report     results.Report
	Duplicates []string
	Filtered   int
}

// ReportService drives the aggregate, publish and navigation flows.
type ReportService interface {
	Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, error)
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)
	Reload(ctx context.Context) (Snapshot, error)
	Snapshot() Snapshot
	Navigate(ctx context.Context, activeID string) (navigation.View, error)
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}
