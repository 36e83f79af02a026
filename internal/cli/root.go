// Package cli provides the evctl command-line interface over the same
// record sources and view engine the dashboard serves.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/evdash/internal/core"
	"github.com/JonMunkholm/evdash/internal/logging"
	"github.com/JonMunkholm/evdash/internal/source"
)

// Version is set at build time.
var Version = "0.1.0"

// Output formats accepted by --output.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

var outputFormats = []string{FormatTable, FormatJSON, FormatCSV, FormatMarkdown}

// app is the state shared by all commands of one invocation.
type app struct {
	dataPaths []string
	output    string
	logLevel  string

	log     *slog.Logger
	records []core.Record
}

// NewRootCmd creates the evctl root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "evctl",
		Short: "evctl - Electric vehicle registration explorer",
		Long: `evctl loads electric vehicle registration records from JSON, YAML or CSV
files and prints the dashboard aggregates, table pages and CSV export.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringArrayVarP(&a.dataPaths, "data", "d", nil,
		"Record file (.json, .yaml, .yml, .csv); repeatable (default: $DATA_SOURCES)")
	a.output = FormatTable
	rootCmd.PersistentFlags().Var(formatFlag{&a.output}, "output",
		"Output format ("+strings.Join(outputFormats, "|")+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newSummaryCommand(a))
	rootCmd.AddCommand(newTableCommand(a))
	rootCmd.AddCommand(newExportCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		return err
	}
	return nil
}

// load validates the global flags and reads the record files.
func (a *app) load(cmd *cobra.Command) error {
	a.log = logging.New(cmd.ErrOrStderr(), a.logLevel, "text")

	paths := a.dataPaths
	if len(paths) == 0 {
		paths = splitPaths(os.Getenv("DATA_SOURCES"))
	}
	if len(paths) == 0 {
		return fmt.Errorf("no data files: pass --data or set DATA_SOURCES")
	}

	records, err := source.Load(cmd.Context(), paths...)
	if err != nil {
		return err
	}
	a.records = records
	a.log.Debug("records loaded", "files", len(paths), "count", len(records))
	return nil
}

// formatFlag restricts --output to outputFormats at parse time.
type formatFlag struct {
	value *string
}

var _ pflag.Value = formatFlag{}

func (f formatFlag) String() string {
	if f.value == nil {
		return ""
	}
	return *f.value
}

func (f formatFlag) Set(s string) error {
	for _, o := range outputFormats {
		if s == o {
			*f.value = s
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want %s)", s, strings.Join(outputFormats, ", "))
}

func (f formatFlag) Type() string {
	return "format"
}

func splitPaths(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
