// Package endpoints implements the endpoints command.
package endpoints

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/bidcompare/cmd/application"
	"github.com/agentstation/bidcompare/internal/cmd/output"
	"github.com/agentstation/bidcompare/internal/cmd/table"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Check is one endpoint load in machine-readable output.
type Check struct {
	ID       sources.ID    `json:"id" yaml:"id" table:"Endpoint"`
	URL      string        `json:"url" yaml:"url" table:"URL"`
	Records  int           `json:"records" yaml:"records"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the endpoints command.
func NewCommand(app application.Application) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"ep"},
		GroupID: "management",
		Short:   "List the configured data endpoints",
		Example: `  bidcompare endpoints                 # Show resolved endpoint URLs
  bidcompare endpoints --check         # Load each endpoint and report record counts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
			if err != nil {
				return err
			}

			if !check {
				return output.Write(cmd.OutOrStdout(), format, table.EndpointsToTableData(client.Endpoints()), client.Endpoints())
			}

			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			results, err := client.Load(ctx)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, output.Data{}, checks(results))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "load every endpoint and report record counts")

	return cmd
}

func checks(results sources.Results) []Check {
	out := make([]Check, 0, len(results))
	for _, r := range results {
		c := Check{
			ID:       r.Endpoint.ID,
			URL:      r.Endpoint.URL,
			Records:  len(r.Records),
			Duration: r.Duration,
		}
		if r.Err != nil {
			c.Error = r.Err.Error()
		}
		out = append(out, c)
	}
	return out
}
