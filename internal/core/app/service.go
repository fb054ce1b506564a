package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/engine/navigation"
	"vreport/internal/shared/observability"
)

type reportService struct {
	app *App
}

var _ ports.ReportService = (*reportService)(nil)

func NewReportService(app *App) ports.ReportService {
	return &reportService{app: app}
}

func (a *App) ReportService() ports.ReportService {
	return NewReportService(a)
}

func (s *reportService) Aggregate(ctx context.Context, req ports.AggregateRequest) (ports.AggregateResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "reportService.Aggregate", trace.WithAttributes(
		attribute.String("sessions.path", req.SessionsPath),
		attribute.String("output.path", req.OutputPath),
	))
	defer span.End()

	res, err := s.app.Aggregate(ctx, req)
	if err != nil {
		return res, fail(span, errors.AddContext(err, errors.CtxOperation, "aggregate"))
	}
	span.SetAttributes(
		attribute.Bool("skipped", res.Skipped),
		attribute.Int("records", res.Records),
		attribute.Int("malformed", len(res.Malformed)),
		attribute.Int("duplicates", len(res.Duplicates)),
	)
	return res, nil
}

func (s *reportService) Publish(ctx context.Context, req ports.PublishRequest) (ports.PublishResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "reportService.Publish", trace.WithAttributes(
		attribute.String("results.path", req.ResultsPath),
		attribute.Bool("record", req.Record),
	))
	defer span.End()

	res, err := s.app.Publish(ctx, req)
	if err != nil {
		return res, fail(span, errors.AddContext(err, errors.CtxOperation, "publish"))
	}
	span.SetAttributes(attribute.Int("records", len(res.Report.Results)), attribute.String("run.id", res.RunID))
	return res, nil
}

func (s *reportService) Reload(ctx context.Context) (ports.Snapshot, error) {
	ctx, span := observability.Tracer.Start(ctx, "reportService.Reload")
	defer span.End()

	snap, err := s.app.Reload(ctx)
	if err != nil {
		return snap, fail(span, errors.AddContext(err, errors.CtxOperation, "reload"))
	}
	span.SetAttributes(attribute.Int64("version", snap.Version), attribute.Int("records", len(snap.Report.Results)))
	return snap, nil
}

func (s *reportService) Snapshot() ports.Snapshot {
	return s.app.Snapshot()
}

func (s *reportService) Navigate(ctx context.Context, activeID string) (navigation.View, error) {
	ctx, span := observability.Tracer.Start(ctx, "reportService.Navigate", trace.WithAttributes(
		attribute.String("requested.id", activeID),
	))
	defer span.End()

	view, err := s.app.Navigate(ctx, activeID)
	if err != nil {
		return view, fail(span, err)
	}
	span.SetAttributes(attribute.String("active.id", view.State.ActiveID), attribute.Bool("fallback", view.Fallback), attribute.Int64("version", view.Version))
	return view, nil
}

func (s *reportService) Subscribe(fn func(ports.Snapshot)) func() {
	return s.app.Subscribe(fn)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
