package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vreport/internal/core/config"
	"vreport/internal/core/ports"
	"vreport/internal/core/watcher"
	"vreport/internal/engine/results"
)

// App owns the loaded result set and republishes it wholesale on every
// change. Readers get immutable snapshots; the last reload wins.
type App struct {
	Config      *config.Config
	ResultsPath string
	ConfigPath  string

	validator *results.Validator
	history   ports.HistoryStore

	mu       sync.RWMutex
	filter   *results.Filter
	loaded   results.Report
	snapshot ports.Snapshot
	lastErr  error
	lastLoad time.Time

	subMu   sync.RWMutex
	subs    map[int]func(ports.Snapshot)
	nextSub int

	watchMu       sync.Mutex
	activeWatcher *watcher.Watcher
}

type Options struct {
	// ResultsPath is the results file served by Reload and Navigate.
	ResultsPath string
	// ConfigPath is watched for filter changes when set.
	ConfigPath string
	History    ports.HistoryStore
}

func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	filter, err := results.NewFilter(cfg.Filter.IncludeComponents, cfg.Filter.ExcludeComponents)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:      cfg,
		ResultsPath: opts.ResultsPath,
		ConfigPath:  opts.ConfigPath,
		validator:   results.NewValidator(),
		history:     opts.History,
		filter:      filter,
		subs:        make(map[int]func(ports.Snapshot)),
	}
	a.snapshot = ports.Snapshot{Report: results.Report{Results: []results.Record{}, ImpactedComponents: []string{}}}
	return a, nil
}

// Locator returns the screenshot URL builder for the configured bucket.
func (a *App) Locator() results.ScreenshotLocator {
	return results.ScreenshotLocator{
		BaseURL:   a.Config.Screenshots.BaseURL,
		Branch:    a.Config.Screenshots.Branch,
		Extension: a.Config.Screenshots.Extension,
	}
}

// History returns the configured history store, or nil.
func (a *App) History() ports.HistoryStore {
	return a.history
}

func (a *App) Close(ctx context.Context) error {
	a.watchMu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.watchMu.Unlock()

	var firstErr error
	if w != nil {
		if err := w.Close(); err != nil {
			firstErr = err
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		slog.Warn("app close", "error", firstErr)
	}
	return firstErr
}
