// Package cli wires configuration, the app and the presentation hosts into
// the vreport command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vreport/internal/core/config"
	"vreport/internal/core/errors"
)

const versionString = "1.0.0"

type rootOptions struct {
	configPath string
	verbose    bool
	format     string
	noColor    bool
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode is 2 for invalid input and 1 for everything else.
func exitCode(err error) int {
	if errors.IsCode(err, errors.CodeValidationError) {
		return 2
	}
	return 1
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "vreport",
		Short: "Visual regression result aggregator and report navigator",
		Long: `vreport turns raw visual test sessions into a list of failing comparisons,
publishes them as a pull request report and lets you browse them by
component, story and viewport from the terminal or a browser.`,
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("vreport v%s\n", versionString))

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json, yaml, tsv or markdown")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newAggregateCommand(opts),
		newReportCommand(opts),
		newSummaryCommand(opts),
		newTreeCommand(opts),
		newNavCommand(opts),
		newServeCommand(opts),
		newTUICommand(opts),
		newHistoryCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vreport v%s\n", versionString)
		},
	}
}
