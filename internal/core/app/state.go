package app

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"vreport/internal/core/config"
	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
	"vreport/internal/shared/observability"
)

// Snapshot returns the current result set.
func (a *App) Snapshot() ports.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// LastReload reports when the result set was last replaced and the error of
// the most recent failed reload, if it has not succeeded since.
func (a *App) LastReload() (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastLoad, a.lastErr
}

// Reload reads the results file and replaces the result set. A missing file
// yields an empty set. On a decode error the previous set stays in place.
func (a *App) Reload(ctx context.Context) (ports.Snapshot, error) {
	start := time.Now()
	defer func() {
		observability.RecomputeDuration.WithLabelValues("reload").Observe(time.Since(start).Seconds())
	}()
	if err := ctx.Err(); err != nil {
		return ports.Snapshot{}, err
	}

	report, err := a.readResults(a.ResultsPath)
	if err != nil {
		observability.ReloadsTotal.WithLabelValues("error").Inc()
		a.mu.Lock()
		a.lastErr = err
		a.mu.Unlock()
		return a.Snapshot(), err
	}
	report.Results = a.validRecords(report.Results)

	a.mu.Lock()
	a.loaded = report
	snap := a.rebuildLocked()
	a.lastErr = nil
	a.lastLoad = time.Now().UTC()
	a.mu.Unlock()

	observability.ReloadsTotal.WithLabelValues("ok").Inc()
	slog.Info("result set loaded", "path", a.ResultsPath, "records", len(snap.Report.Results), "filtered", snap.Filtered, "version", snap.Version)
	a.publish(snap)
	return snap, nil
}

// ApplyFilter swaps the component filter and republishes the result set.
func (a *App) ApplyFilter(f config.Filter) error {
	filter, err := results.NewFilter(f.IncludeComponents, f.ExcludeComponents)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "invalid component filter")
	}
	a.mu.Lock()
	a.filter = filter
	a.Config.Filter = f
	snap := a.rebuildLocked()
	a.mu.Unlock()

	a.publish(snap)
	return nil
}

// Navigate computes the view for activeID over the current result set.
func (a *App) Navigate(ctx context.Context, activeID string) (navigation.View, error) {
	if err := ctx.Err(); err != nil {
		return navigation.View{}, err
	}
	start := time.Now()
	snap := a.Snapshot()
	view := navigation.ViewFor(snap.Report.Results, activeID)
	view.Version = snap.Version
	observability.RecomputeDuration.WithLabelValues("navigate").Observe(time.Since(start).Seconds())
	if view.Fallback {
		slog.Debug("unknown result id, falling back to first", "id", activeID, "active", view.State.ActiveID)
	}
	return view, nil
}

// Record returns one record of the current set.
func (a *App) Record(id string) (results.Record, error) {
	rec, ok := navigation.Find(a.Snapshot().Report.Results, id)
	if !ok {
		return results.Record{}, errors.AddContext(errors.New(errors.CodeNotFound, "test result not found"), errors.CtxResultID, id)
	}
	return rec, nil
}

// Subscribe registers fn for every new snapshot. fn runs on the goroutine
// that produced the snapshot and must not block.
func (a *App) Subscribe(fn func(ports.Snapshot)) func() {
	a.subMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.subMu.Unlock()

	return func() {
		a.subMu.Lock()
		delete(a.subs, id)
		a.subMu.Unlock()
	}
}

func (a *App) publish(snap ports.Snapshot) {
	a.subMu.RLock()
	handlers := make([]func(ports.Snapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		handlers = append(handlers, fn)
	}
	a.subMu.RUnlock()

	for _, fn := range handlers {
		fn(snap)
	}
}

func (a *App) rebuildLocked() ports.Snapshot {
	visible := a.filter.Apply(a.loaded.Results)
	dups := results.DuplicateIDs(visible)
	if len(dups) > 0 {
		observability.DuplicateIDsTotal.Add(float64(len(dups)))
		slog.Warn("duplicate result ids", "count", len(dups), "ids", dups)
	}

	a.snapshot = ports.Snapshot{
		Version:    a.snapshot.Version + 1,
		Report:     a.loaded.WithResults(visible),
		Duplicates: dups,
		Filtered:   len(a.loaded.Results) - len(visible),
	}
	observability.ResultSetSize.Set(float64(len(visible)))
	return a.snapshot
}

func (a *App) readResults(path string) (results.Report, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		slog.Warn("results file not found, serving empty set", "path", path)
		return results.Report{Results: []results.Record{}}, nil
	}
	if err != nil {
		return results.Report{}, errors.AddContext(errors.Wrap(err, errors.CodeUnavailable, "open results"), errors.CtxPath, path)
	}
	defer f.Close()

	report, err := results.DecodeReport(f)
	if err != nil {
		return results.Report{}, errors.AddContext(err, errors.CtxPath, path)
	}
	return report, nil
}

// validRecords drops records that fail validation, logging each one.
func (a *App) validRecords(records []results.Record) []results.Record {
	out := make([]results.Record, 0, len(records))
	for i, rec := range records {
		if err := a.validator.Record(rec); err != nil {
			observability.SkippedEntriesTotal.WithLabelValues("invalid_record").Inc()
			slog.Warn("skipping invalid result record", "index", i, "id", rec.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}
