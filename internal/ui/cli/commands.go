package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vreport/internal/core/app"
	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/data/history"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/navigation"
	"vreport/internal/ui/report"
	"vreport/internal/ui/tui"
	"vreport/internal/ui/web"
)

// withRuntime runs fn with a configured runtime and closes it afterwards.
func withRuntime(cmd *cobra.Command, opts *rootOptions, uiMode bool, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := setup(ctx, opts, cmd.OutOrStdout(), uiMode)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())
	return fn(ctx, rt)
}

func newAggregateCommand(opts *rootOptions) *cobra.Command {
	var (
		sessions          string
		out               string
		updateExpectation bool
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Reduce raw test sessions to the failing results file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				req := ports.AggregateRequest{
					SessionsPath:      pick(sessions, rt.paths.SessionsFile),
					OutputPath:        pick(out, rt.paths.ResultsFile),
					UpdateExpectation: updateExpectation,
				}
				res, err := rt.svc.Aggregate(ctx, req)
				if err != nil {
					return err
				}
				data, err := rt.renderer.Aggregate(res)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}
	cmd.Flags().StringVar(&sessions, "sessions", "", "Raw sessions file (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "Results file to write (default from config)")
	cmd.Flags().BoolVar(&updateExpectation, "update-expectation", false, "Mark this run as an expectation update and skip the report")
	return cmd
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var (
		resultsPath string
		out         string
		record      bool
		reportURL   string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Wrap the results file into the pull request report envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				res, err := rt.svc.Publish(ctx, ports.PublishRequest{
					ResultsPath: pick(resultsPath, rt.paths.ResultsFile),
					OutputPath:  pick(out, rt.paths.ReportFile),
					Record:      record,
				})
				if err != nil {
					return err
				}
				renderer := rt.renderer
				renderer.ReportURL = reportURL
				data, err := renderer.Publish(res)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}
	cmd.Flags().StringVar(&resultsPath, "results", "", "Results file to read (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "Report file to write (default from config)")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in history (requires db.enabled)")
	cmd.Flags().StringVar(&reportURL, "report-url", "", "Web report URL used for links in markdown output")
	return cmd
}

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	var (
		reportURL string
		inject    string
		marker    string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Render the markdown summary posted on pull requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				snap, err := rt.svc.Reload(ctx)
				if err != nil {
					return err
				}
				rep := rt.app.ReportEnvelope().WithResults(snap.Report.Results)
				md := report.NewMarkdownGenerator().Generate(rep, report.MarkdownOptions{
					ReportURL:           reportURL,
					CollapsibleSections: true,
				})
				if inject != "" {
					return report.InjectMarkdown(inject, marker, md)
				}
				return rt.write([]byte(md))
			})
		},
	}
	cmd.Flags().StringVar(&reportURL, "report-url", "", "Web report URL used for result links")
	cmd.Flags().StringVar(&inject, "inject", "", "Replace the marked block of this markdown file instead of printing")
	cmd.Flags().StringVar(&marker, "marker", "summary", "Marker name used with --inject")
	return cmd
}

func newTreeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the component > story > viewport menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				snap, err := rt.svc.Reload(ctx)
				if err != nil {
					return err
				}
				data, err := rt.renderer.Tree(menu.BuildTree(snap.Report.Results))
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}
}

func newNavCommand(opts *rootOptions) *cobra.Command {
	var (
		id       string
		location string
	)
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Print the navigation state for a result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && location != "" {
				id = navigation.ParseLocation(location)
			}
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.svc.Reload(ctx); err != nil {
					return err
				}
				view, err := rt.svc.Navigate(ctx, id)
				if err != nil {
					return err
				}
				data, err := rt.renderer.View(view)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Result id to make active")
	cmd.Flags().StringVar(&location, "location", "", "Location to resolve, e.g. ?testResultId=<id> or /test-result/<id>")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP with live updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				if _, err := rt.svc.Reload(ctx); err != nil {
					return err
				}
				if err := rt.app.StartWatcher(ctx); err != nil {
					return errors.Wrap(err, errors.CodeUnavailable, "start watcher")
				}

				serverCfg := rt.cfg.Server
				if addr != "" {
					serverCfg.Address = addr
				}
				srv := web.NewServer(web.Options{
					Server:        serverCfg,
					Service:       rt.svc,
					Health:        app.NewHealthService(rt.app),
					EnableMetrics: rt.cfg.Observability.EnableMetrics,
				})
				if err := srv.Start(ctx); err != nil {
					return errors.Wrap(err, errors.CodeUnavailable, "start server")
				}

				<-ctx.Done()
				return srv.Stop(context.Background())
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newTUICommand(opts *rootOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse failing results in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, true, func(ctx context.Context, rt *runtime) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				if _, err := rt.svc.Reload(ctx); err != nil {
					return err
				}
				if err := rt.app.StartWatcher(ctx); err != nil {
					return errors.Wrap(err, errors.CodeUnavailable, "start watcher")
				}
				return tui.Run(ctx, rt.svc, id)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Result id to open first")
	return cmd
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded report runs",
	}

	var listOpts history.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				store, err := rt.requireHistory()
				if err != nil {
					return err
				}
				runs, err := store.ListRuns(ctx, listOpts)
				if err != nil {
					return err
				}
				data, err := rt.renderer.Runs(runs)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}
	list.Flags().StringVar(&listOpts.Branch, "branch", "", "Only runs for this branch")
	list.Flags().IntVar(&listOpts.Limit, "limit", 20, "Maximum number of runs")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				store, err := rt.requireHistory()
				if err != nil {
					return err
				}
				run, err := store.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := rt.renderer.Run(run)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				store, err := rt.requireHistory()
				if err != nil {
					return err
				}
				removed, err := store.Prune(ctx, keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
	prune.Flags().IntVar(&keep, "keep", 50, "Number of runs to keep")

	components := &cobra.Command{
		Use:   "components",
		Short: "Count the recorded runs each component failed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, false, func(ctx context.Context, rt *runtime) error {
				store, err := rt.requireHistory()
				if err != nil {
					return err
				}
				counts, err := store.ComponentFailures(ctx)
				if err != nil {
					return err
				}
				data, err := rt.renderer.ComponentFailures(counts)
				if err != nil {
					return err
				}
				return rt.write(data)
			})
		},
	}

	cmd.AddCommand(list, show, prune, components)
	return cmd
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
