package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/compare"
	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/completion"
	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/correlate"
	"github.com/agentstation/bidcompare/cmd/bidcompare/cmd/endpoints"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(compare.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(endpoints.NewCommand(a))
	rootCmd.AddCommand(correlate.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(completion.NewCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "bidcompare %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
				fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
