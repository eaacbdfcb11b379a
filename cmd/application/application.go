// Package application provides the application interface for bidcompare commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            report, err := client.Compare(cmd.Context())
//	            // ... render report
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...bidcompare.Option) (bidcompare.Client, error) {
//	        return bidcompare.New(append(fixtureOptions, opts...)...)
//	    },
//	}
//	cmd := compare.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/bidcompare"
)

// Application provides the application interface that commands need.
// The App struct from cmd/bidcompare/app implements this interface.
type Application interface {
	// Client returns a comparison client built from the loaded configuration.
	// Options are applied after the configured ones, so they win.
	Client(opts ...bidcompare.Option) (bidcompare.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
