package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"vreport/internal/core/config"
	"vreport/internal/core/errors"
	"vreport/internal/core/watcher"
)

// StartWatcher reloads the result set when the results file changes and
// re-applies component filters when the config file changes. Only one
// watcher runs per App; Close stops it.
func (a *App) StartWatcher(ctx context.Context) error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.activeWatcher != nil {
		return errors.New(errors.CodeConflict, "watcher already running")
	}

	paths := []string{a.ResultsPath}
	if a.ConfigPath != "" {
		paths = append(paths, a.ConfigPath)
	}

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, func(changed []string) {
		a.HandleChanges(ctx, changed)
	})
	if err != nil {
		return err
	}
	if err := w.Watch(paths); err != nil {
		_ = w.Close()
		return err
	}

	a.activeWatcher = w
	return nil
}

func (a *App) HandleChanges(ctx context.Context, paths []string) {
	slog.Info("detected changes", "count", len(paths))
	for _, path := range paths {
		switch {
		case samePath(path, a.ResultsPath):
			if _, err := a.Reload(ctx); err != nil {
				slog.Warn("failed to reload results", "path", path, "error", err)
			}
		case a.ConfigPath != "" && samePath(path, a.ConfigPath):
			cfg, err := config.Load(path)
			if err != nil {
				slog.Warn("failed to reload config", "path", path, "error", err)
				continue
			}
			if err := a.ApplyFilter(cfg.Filter); err != nil {
				slog.Warn("failed to apply filter", "path", path, "error", err)
			}
		}
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
