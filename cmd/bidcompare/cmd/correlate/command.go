// Package correlate implements the correlate command, which inspects the
// correlation tables the way the comparison uses them.
package correlate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/bidcompare/cmd/application"
	"github.com/agentstation/bidcompare/internal/cmd/output"
	"github.com/agentstation/bidcompare/internal/cmd/table"
	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/match"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Table describes one correlation table.
type Table struct {
	Endpoint   sources.ID        `json:"endpoint" yaml:"endpoint"`
	Rows       int               `json:"rows" yaml:"rows"`
	Keys       int               `json:"keys" yaml:"keys"`
	Unkeyed    int               `json:"unkeyed" yaml:"unkeyed" table:"Without Identity"`
	Duplicates []match.Duplicate `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the correlate command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "correlate [endpoint...]",
		GroupID: "management",
		Short:   "Inspect the correlation tables",
		Long: `Correlate loads the correlation tables and reports how many rows carry a
truth identity, and which identities occur more than once. Only the first
row for a duplicated identity is used when comparing.`,
		Example: `  bidcompare correlate                       # Both tables
  bidcompare correlate users_by_fd_key       # Source 2 table only`,
		ValidArgs: []string{string(sources.UsersByFDKeyID), string(sources.UsersByUUIDTextID)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			results, err := client.Load(ctx, ids...)
			if err != nil {
				return err
			}

			tables := Inspect(results)
			if !format.IsTable() {
				return output.Write(cmd.OutOrStdout(), format, output.Data{}, tables)
			}
			return render(cmd.OutOrStdout(), format, tables)
		},
	}
}

func parseIDs(args []string) ([]sources.ID, error) {
	if len(args) == 0 {
		return []sources.ID{sources.UsersByFDKeyID, sources.UsersByUUIDTextID}, nil
	}
	ids := make([]sources.ID, 0, len(args))
	for _, a := range args {
		id := sources.ID(a)
		if id != sources.UsersByFDKeyID && id != sources.UsersByUUIDTextID {
			return nil, errors.NewValidationError("endpoint", a, "not a correlation table")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Inspect indexes each loaded table by truth identity.
func Inspect(results sources.Results) []Table {
	key := bids.CorrelationSchema.MustKey(bids.FieldTruthIdentity)

	tables := make([]Table, 0, len(results))
	for _, r := range results {
		t := Table{Endpoint: r.Endpoint.ID, Rows: len(r.Records)}
		if r.Err != nil {
			t.Error = r.Err.Error()
			tables = append(tables, t)
			continue
		}
		idx := match.NewIndex(r.Records, key)
		t.Keys = idx.Len()
		t.Unkeyed = idx.Unkeyed()
		t.Duplicates = idx.Duplicates()
		tables = append(tables, t)
	}
	return tables
}

// render prints one summary row per table, then the duplicated keys of
// each table that has any.
func render(w io.Writer, format output.Format, tables []Table) error {
	if err := output.Write(w, format, output.Data{}, tables); err != nil {
		return err
	}

	key := bids.CorrelationSchema.MustKey(bids.FieldTruthIdentity)
	for _, t := range tables {
		if len(t.Duplicates) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s: duplicated %s\n", t.Endpoint, key)
		if err := output.Write(w, format, table.DuplicatesToTableData(key, t.Duplicates), nil); err != nil {
			return err
		}
	}
	return nil
}
