package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"time"

	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/engine/results"
	"vreport/internal/shared/observability"
	"vreport/internal/shared/util"
)

// Aggregate reduces a raw sessions file into a results file.
func (a *App) Aggregate(ctx context.Context, req ports.AggregateRequest) (ports.AggregateResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.AggregateResult{}, err
	}
	if req.UpdateExpectation || a.Config.Aggregate.UpdateExpectation {
		slog.Info("expectation update detected, skipping report")
		return ports.AggregateResult{Skipped: true}, nil
	}

	f, err := os.Open(req.SessionsPath)
	if err != nil {
		code := errors.CodeUnavailable
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return ports.AggregateResult{}, errors.AddContext(errors.Wrap(err, code, "open sessions"), errors.CtxPath, req.SessionsPath)
	}
	defer f.Close()

	sessions, err := results.DecodeSessions(f)
	if err != nil {
		return ports.AggregateResult{}, errors.AddContext(err, errors.CtxPath, req.SessionsPath)
	}

	start := time.Now()
	res := results.Aggregate(sessions, results.AggregateOptions{Locator: a.Locator()})
	observability.AggregationDuration.Observe(time.Since(start).Seconds())
	observability.AggregatedRecordsTotal.Add(float64(len(res.Records)))

	for _, s := range res.Skipped {
		observability.SkippedEntriesTotal.WithLabelValues(s.Reason).Inc()
		slog.Warn("skipping malformed entry", "path", s.Path, "reason", s.Reason)
	}
	if len(res.Duplicates) > 0 {
		observability.DuplicateIDsTotal.Add(float64(len(res.Duplicates)))
		slog.Warn("duplicate result ids", "count", len(res.Duplicates), "ids", res.Duplicates)
	}

	set := results.ResultSet{Results: res.Records}
	if set.Results == nil {
		set.Results = []results.Record{}
	}
	if err := a.validator.ResultSet(set); err != nil {
		return ports.AggregateResult{}, errors.AddContext(err, errors.CtxOperation, "aggregate")
	}

	var buf bytes.Buffer
	if err := results.WriteJSON(&buf, set); err != nil {
		return ports.AggregateResult{}, errors.Wrap(err, errors.CodeInternal, "encode results")
	}
	if err := util.WriteFileAtomic(req.OutputPath, buf.Bytes(), 0o644); err != nil {
		return ports.AggregateResult{}, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write results"), errors.CtxPath, req.OutputPath)
	}
	slog.Info("generated visual tests results", "path", req.OutputPath, "records", len(set.Results), "passed", res.Passed)

	return ports.AggregateResult{
		OutputPath: req.OutputPath,
		Records:    len(set.Results),
		Passed:     res.Passed,
		Missing:    res.Missing,
		Malformed:  res.Skipped,
		Duplicates: res.Duplicates,
	}, nil
}
