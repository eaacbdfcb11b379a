// Package app provides the application context and dependency management
// for the bidcompare CLI. It centralizes configuration, logging and the
// construction of comparison clients.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/bidcompare"
	"github.com/agentstation/bidcompare/cmd/application"
	"github.com/agentstation/bidcompare/pkg/errors"
)

// App represents the bidcompare application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger; injected loggers survive flag parsing
	logger         *zerolog.Logger
	loggerInjected bool

	// Options applied to every client after the configured ones
	clientOpts []bidcompare.Option
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client builds a comparison client from the configuration. Each call
// returns a fresh client; opts are applied last.
func (a *App) Client(opts ...bidcompare.Option) (bidcompare.Client, error) {
	all := a.clientOptions()
	all = append(all, a.clientOpts...)
	all = append(all, opts...)

	client, err := bidcompare.New(all...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	return client, nil
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []bidcompare.Option {
	opts := []bidcompare.Option{
		bidcompare.WithLogger(a.logger),
		bidcompare.WithTimeout(a.config.Timeout),
		bidcompare.WithAuth(a.config.AuthScheme, a.config.AuthParamName(), a.config.AuthToken),
	}

	for id, url := range a.config.Endpoints {
		opts = append(opts, bidcompare.WithEndpointURL(id, url))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.loggerInjected = logger != nil
		return nil
	}
}

// WithClientOptions adds options to every client the app builds (useful
// for testing).
func WithClientOptions(opts ...bidcompare.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}
