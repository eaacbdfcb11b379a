// Package bidcompare reconciles bid records reported by three independently
// operated systems. The truth system is authoritative; every field where
// source 2 or source 3 disagrees with it becomes one discrepancy in a
// lot-ordered report. Nothing is ever written back to any system.
//
// Example usage:
//
//	client, err := bidcompare.New(
//	    bidcompare.WithEndpointURL(sources.Source3ID, "testdata/json_3.json"),
//	    bidcompare.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := client.Compare(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, d := range report.Discrepancies {
//	    fmt.Println(d.Lot, d.Field, d.Destination, d.Diff)
//	}
package bidcompare

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/bidcompare/internal/transport"
	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/reconcile"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Client loads the five endpoints and reconciles them.
type Client interface {
	// Endpoints returns the endpoints this client loads, in load order
	Endpoints() sources.Endpoints

	// Destinations returns the destinations compared, in order
	Destinations() []compare.Destination

	// Load fetches the endpoints with the given IDs concurrently, or every
	// endpoint when none are given. Failed endpoints come back with an
	// error in their Result and no records.
	Load(ctx context.Context, ids ...sources.ID) (sources.Results, error)

	// Reconcile compares already loaded results
	Reconcile(ctx context.Context, results sources.Results) (*reconcile.Result, error)

	// Compare runs Load and Reconcile
	Compare(ctx context.Context) (*Report, error)

	// OnLoaded registers a callback run once per endpoint as soon as its
	// load finishes. Calls are serialized but arrive in completion order.
	OnLoaded(LoadedHook)

	// OnDiscrepancy registers a callback run once per reported discrepancy
	OnDiscrepancy(DiscrepancyHook)
}

// Report is the outcome of Compare.
type Report struct {
	*reconcile.Result

	// Loads holds one result per endpoint
	Loads sources.Results
}

// client is the internal implementation of the Client interface
type client struct {
	config     *config
	endpoints  sources.Endpoints
	loader     sources.Loader
	reconciler *reconcile.Reconciler
	hooks      *hooks
}

// New creates a new Client with the given options
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	endpoints, err := cfg.endpoints.With(cfg.overrides)
	if err != nil {
		return nil, err
	}

	loader := cfg.loader
	if loader == nil {
		auth, err := transport.NewAuthenticator(cfg.authScheme, cfg.authParam)
		if err != nil {
			return nil, err
		}
		var topts []transport.Option
		if cfg.httpClient != nil {
			topts = append(topts, transport.WithHTTPClient(cfg.httpClient))
		}
		if cfg.httpClient == nil || cfg.timeoutSet || cfg.httpClient.Timeout == 0 {
			topts = append(topts, transport.WithTimeout(cfg.timeout))
		}
		loader = sources.NewLoader(transport.New(auth, cfg.authToken, topts...))
	}

	rOpts := []reconcile.Option{reconcile.WithDestinations(cfg.destinations...)}
	if cfg.logger != nil {
		rOpts = append(rOpts, reconcile.WithLogger(cfg.logger))
	}
	r, err := reconcile.New(rOpts...)
	if err != nil {
		return nil, err
	}

	return &client{
		config:     cfg,
		endpoints:  endpoints,
		loader:     loader,
		reconciler: r,
		hooks:      newHooks(),
	}, nil
}

// Endpoints implements Client.
func (c *client) Endpoints() sources.Endpoints {
	return append(sources.Endpoints(nil), c.endpoints...)
}

// Destinations implements Client.
func (c *client) Destinations() []compare.Destination {
	return c.reconciler.Destinations()
}

// Load implements Client.
func (c *client) Load(ctx context.Context, ids ...sources.ID) (sources.Results, error) {
	ctx = c.withLogger(ctx)

	eps := c.endpoints
	if len(ids) > 0 {
		eps = make(sources.Endpoints, 0, len(ids))
		for _, id := range ids {
			ep, ok := c.endpoints.Get(id)
			if !ok {
				return nil, errors.NewNotFoundError("endpoint", string(id))
			}
			eps = append(eps, ep)
		}
	}

	return sources.LoadAll(ctx, c.loader, eps, c.hooks.triggerLoaded)
}

// Reconcile implements Client.
func (c *client) Reconcile(ctx context.Context, results sources.Results) (*reconcile.Result, error) {
	ctx = c.withLogger(ctx)
	res, err := c.reconciler.Reconcile(ctx, reconcile.Inputs{
		Truth:        results.Records(sources.TruthID),
		Source2:      results.Records(sources.Source2ID),
		Source3:      results.Records(sources.Source3ID),
		Correlation2: results.Records(sources.UsersByFDKeyID),
		Correlation3: results.Records(sources.UsersByUUIDTextID),
	})
	if res != nil {
		c.hooks.triggerDiscrepancies(res.Discrepancies)
	}
	return res, err
}

// Compare implements Client.
func (c *client) Compare(ctx context.Context) (*Report, error) {
	start := time.Now()

	loads, err := c.Load(ctx)
	if err != nil {
		return &Report{Result: &reconcile.Result{}, Loads: loads}, err
	}

	res, err := c.Reconcile(ctx, loads)
	report := &Report{Result: res, Loads: loads}
	if res != nil {
		res.Duration = time.Since(start)
	}
	return report, err
}

// OnLoaded implements Client.
func (c *client) OnLoaded(fn LoadedHook) {
	c.hooks.OnLoaded(fn)
}

// OnDiscrepancy implements Client.
func (c *client) OnDiscrepancy(fn DiscrepancyHook) {
	c.hooks.OnDiscrepancy(fn)
}

func (c *client) withLogger(ctx context.Context) context.Context {
	if c.config.logger != nil && !logging.HasLogger(ctx) {
		return logging.WithLogger(ctx, c.config.logger)
	}
	return ctx
}
