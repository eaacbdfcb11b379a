// Package compare implements the compare command: load every endpoint,
// reconcile and print the differences.
package compare

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/bidcompare"
	"github.com/agentstation/bidcompare/cmd/application"
	"github.com/agentstation/bidcompare/internal/cmd/output"
	"github.com/agentstation/bidcompare/internal/cmd/table"
	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/report"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// ErrDifferencesFound is returned with --fail-on-diff when the report is not empty.
var ErrDifferencesFound = errors.New("differences found")

// Flags holds the compare command flags.
type Flags struct {
	Destination string
	FailOnDiff  bool
	Timeout     time.Duration
	Endpoints   map[string]string
}

// Result is the machine-readable form of a comparison.
type Result struct {
	Differences []compare.Discrepancy                 `json:"differences" yaml:"differences"`
	Summary     report.Summary                        `json:"summary" yaml:"summary"`
	Stats       map[compare.Destination]compare.Stats `json:"stats" yaml:"stats"`
	Unavailable []string                              `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// NewCommand creates the compare command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "compare",
		GroupID: "core",
		Short:   "Compare bids in source 2 and source 3 against truth",
		Long: `Compare loads the truth bids, both replicas and both correlation tables,
then reports every field where a replica disagrees with truth.

An endpoint that cannot be loaded is reported as a warning and treated as
empty, so the other replica is still compared.`,
		Example: `  bidcompare compare                              # Compare against both replicas
  bidcompare compare --destination 3              # Only source 3
  bidcompare compare -o json --fail-on-diff       # Machine-readable, exit 1 on differences
  bidcompare compare --endpoint truth=./json_1.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Destination, "destination", "all", "destination to compare: 2, 3 or all")
	cmd.Flags().BoolVar(&flags.FailOnDiff, "fail-on-diff", false, "exit with an error when any difference is found")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "HTTP timeout per endpoint (default from config)")
	cmd.Flags().StringToStringVar(&flags.Endpoints, "endpoint", nil, "override an endpoint URL or path (id=url), repeatable")

	_ = cmd.RegisterFlagCompletionFunc("destination", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "2", "3"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// ParseDestinations turns the --destination value into destinations.
func ParseDestinations(s string) ([]compare.Destination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case "2":
		return []compare.Destination{compare.Destination2}, nil
	case "3":
		return []compare.Destination{compare.Destination3}, nil
	}
	return nil, errors.NewValidationError("destination", s, "must be 2, 3 or all")
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	logger := app.Logger()

	dests, err := ParseDestinations(flags.Destination)
	if err != nil {
		return err
	}

	opts := []bidcompare.Option{bidcompare.WithDestinations(dests...)}
	if flags.Timeout > 0 {
		opts = append(opts, bidcompare.WithTimeout(flags.Timeout))
	}
	for id, url := range flags.Endpoints {
		opts = append(opts, bidcompare.WithEndpointURL(sources.ID(id), url))
	}

	client, err := app.Client(opts...)
	if err != nil {
		return err
	}
	client.OnLoaded(progress(logger))

	ctx := logging.WithLogger(cmd.Context(), logger)
	rep, err := client.Compare(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Int("differences", len(rep.Discrepancies)).
		Int("structural_errors", len(rep.Errors)).
		Dur("duration", rep.Duration).
		Msg("Comparison finished")

	format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), format, rep, client.Destinations()); err != nil {
		return err
	}

	if flags.FailOnDiff && rep.HasDiscrepancies() {
		return fmt.Errorf("%w: %d", ErrDifferencesFound, len(rep.Discrepancies))
	}
	return nil
}

// progress logs one line per finished endpoint load.
func progress(logger *zerolog.Logger) bidcompare.LoadedHook {
	return func(r sources.Result) {
		if r.Err != nil {
			logger.Warn().
				Err(r.Err).
				Str("endpoint", string(r.Endpoint.ID)).
				Str("url", r.Endpoint.URL).
				Msg("No data from endpoint, treating it as empty")
			return
		}
		logger.Info().
			Str("endpoint", string(r.Endpoint.ID)).
			Int("records", len(r.Records)).
			Dur("duration", r.Duration).
			Msg("Loaded endpoint")
	}
}

func render(w io.Writer, format output.Format, rep *bidcompare.Report, order []compare.Destination) error {
	if !format.IsTable() {
		res := Result{
			Differences: rep.Discrepancies,
			Summary:     rep.Summary(),
			Stats:       rep.Stats,
		}
		for _, f := range rep.Loads.Failed() {
			res.Unavailable = append(res.Unavailable, string(f.Endpoint.ID))
		}
		return output.Write(w, format, output.Data{}, res)
	}

	fmt.Fprintln(w, constants.ReportTitle)
	if err := output.Write(w, format, table.DiscrepanciesToTableData(rep.Discrepancies), nil); err != nil {
		return err
	}

	if format == output.FormatWide {
		fmt.Fprintln(w)
		if err := output.Write(w, format, table.StatsToTableData(rep.Stats, order), nil); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return output.Write(w, format, table.LoadResultsToTableData(rep.Loads), nil)
	}
	return nil
}
