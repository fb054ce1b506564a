package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/term"

	coreapp "vreport/internal/core/app"
	"vreport/internal/core/config"
	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/data/history"
	"vreport/internal/shared/observability"
	"vreport/internal/ui/report"
)

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg        *config.Config
	configPath string
	paths      config.ResolvedPaths
	app        *coreapp.App
	svc        ports.ReportService
	history    *history.Store
	renderer   report.Renderer
	out        io.Writer

	shutdownTracing func(context.Context) error
	closeLogs       func()
}

func setup(ctx context.Context, opts *rootOptions, out io.Writer, uiMode bool) (*runtime, error) {
	closeLogs := configureLogging(uiMode, opts.verbose)
	configureColor(out, opts.noColor)

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		closeLogs()
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		closeLogs()
		return nil, fmt.Errorf("detect working directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		closeLogs()
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "load config"), errors.CtxPath, opts.configPath)
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		closeLogs()
		return nil, err
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.Observability.EnableTracing,
		Endpoint:     cfg.Observability.OTLPEndpoint,
		ServiceName:  cfg.Observability.ServiceName,
		SampleRatio:  cfg.Observability.SampleRatio,
		InsecureGRPC: cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}

	store, err := openHistoryStoreIfEnabled(cfg, paths)
	if err != nil {
		_ = shutdownTracing(ctx)
		closeLogs()
		return nil, err
	}

	appOpts := coreapp.Options{ResultsPath: paths.ResultsFile}
	if store != nil {
		appOpts.History = store
	}
	if _, err := os.Stat(opts.configPath); err == nil {
		appOpts.ConfigPath = opts.configPath
	}
	a, err := coreapp.New(cfg, appOpts)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = shutdownTracing(ctx)
		closeLogs()
		return nil, err
	}

	renderer := report.NewRenderer(format)
	return &runtime{
		cfg:             cfg,
		configPath:      opts.configPath,
		paths:           paths,
		app:             a,
		svc:             a.ReportService(),
		history:         store,
		renderer:        renderer,
		out:             out,
		shutdownTracing: shutdownTracing,
		closeLogs:       closeLogs,
	}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.app.Close(ctx); err != nil {
		slog.Warn("failed to close app", "error", err)
	}
	if err := r.shutdownTracing(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
	r.closeLogs()
}

func (r *runtime) write(data []byte) error {
	_, err := r.out.Write(data)
	return err
}

func (r *runtime) requireHistory() (*history.Store, error) {
	if r.history == nil {
		return nil, errors.New(errors.CodeNotSupported, "history is disabled; set db.enabled = true")
	}
	return r.history, nil
}

func openHistoryStoreIfEnabled(cfg *config.Config, paths config.ResolvedPaths) (*history.Store, error) {
	if !cfg.DB.Enabled {
		return nil, nil
	}
	store, err := history.Open(paths.DBPath, cfg.DB.BusyTimeout)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeUnavailable, "open history"), errors.CtxPath, paths.DBPath)
	}
	return store, nil
}

// configureColor disables color when asked to or when out is not a terminal.
func configureColor(out io.Writer, noColor bool) {
	if noColor {
		color.NoColor = true
		return
	}
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	var output io.Writer = os.Stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "vreport", "vreport.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "vreport", "vreport.log")
	}

	return "vreport.log"
}
