// # internal/core/app/publish.go
package app

import (
	"bytes"
	"context"
	"log/slog"

	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/data/history"
	"vreport/internal/engine/results"
	"vreport/internal/shared/observability"
	"vreport/internal/shared/util"
)

// ReportEnvelope returns the configured report metadata without results.
func (a *App) ReportEnvelope() results.Report {
	r := a.Config.Report
	return results.Report{
		RepositoryOwner:     r.RepositoryOwner,
		RepositoryName:      r.RepositoryName,
		PRNumber:            r.PRNumber,
		WorkflowID:          r.WorkflowID,
		BranchName:          r.BranchName,
		ExpectationMetadata: results.Metadata{CommitReference: r.ExpectationCommit, LastUpdated: r.ExpectationUpdated},
		ActualMetadata:      results.Metadata{CommitReference: r.ActualCommit, LastUpdated: r.ActualUpdated},
	}
}

// Publish wraps the records of a results file into the report envelope,
// writes it and optionally records the run in history.
func (a *App) Publish(ctx context.Context, req ports.PublishRequest) (ports.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.PublishResult{}, err
	}

	loaded, err := a.readResults(req.ResultsPath)
	if err != nil {
		return ports.PublishResult{}, err
	}
	valid := a.validRecords(loaded.Results)
	skipped := len(loaded.Results) - len(valid)

	a.mu.RLock()
	visible := a.filter.Apply(valid)
	a.mu.RUnlock()

	report := a.ReportEnvelope().WithResults(visible)
	if err := a.validator.Report(report); err != nil {
		return ports.PublishResult{}, errors.AddContext(err, errors.CtxOperation, "publish")
	}

	var buf bytes.Buffer
	if err := results.WriteJSON(&buf, report); err != nil {
		return ports.PublishResult{}, errors.Wrap(err, errors.CodeInternal, "encode report")
	}
	if err := util.WriteFileAtomic(req.OutputPath, buf.Bytes(), 0o644); err != nil {
		return ports.PublishResult{}, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write report"), errors.CtxPath, req.OutputPath)
	}

	out := ports.PublishResult{OutputPath: req.OutputPath, Report: report}
	if req.Record {
		if a.history == nil {
			return out, errors.New(errors.CodeNotSupported, "history is disabled; set db.enabled = true")
		}
		run := history.NewRun(report, skipped, len(results.DuplicateIDs(visible)))
		if err := a.history.SaveRun(ctx, run); err != nil {
			return out, errors.Wrap(err, errors.CodeInternal, "record run")
		}
		observability.HistoryRunsTotal.Inc()
		out.RunID = run.ID
	}

	slog.Info("published report", "path", req.OutputPath, "records", len(report.Results), "components", len(report.ImpactedComponents), "run", out.RunID)
	return out, nil
}
