// Package reconcile drives the per-destination comparison pipelines over one
// snapshot of the three bid systems and assembles their output into a single
// report.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/report"
)

// Inputs is one in-memory snapshot of every system. Any set may be empty.
type Inputs struct {
	Truth   []bids.Record
	Source2 []bids.Record
	Source3 []bids.Record

	// Correlation2 maps truth user_fd_key onto source 2 identities.
	Correlation2 []bids.Record
	// Correlation3 maps truth user_uuid_text onto source 3 identities.
	Correlation3 []bids.Record
}

// For returns the destination records and correlation table used for dest.
func (in Inputs) For(dest compare.Destination) (others, table []bids.Record, err error) {
	switch dest {
	case compare.Destination2:
		return in.Source2, in.Correlation2, nil
	case compare.Destination3:
		return in.Source3, in.Correlation3, nil
	}
	return nil, nil, errors.NewValidationError("destination", dest, "unknown destination")
}

// Reconciler runs a fixed list of pipelines in order.
type Reconciler struct {
	pipelines []*compare.Pipeline
	logger    *zerolog.Logger
}

// Option configures a Reconciler
type Option func(*Reconciler) error

// New creates a Reconciler comparing truth with source 2 and then source 3.
func New(opts ...Option) (*Reconciler, error) {
	r := &Reconciler{
		pipelines: []*compare.Pipeline{
			compare.NewSource2Pipeline(),
			compare.NewSource3Pipeline(),
		},
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// WithLogger sets the logger used when ctx does not carry one.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Reconciler) error {
		r.logger = logger
		return nil
	}
}

// WithPipelines replaces the pipeline list.
func WithPipelines(pipelines ...*compare.Pipeline) Option {
	return func(r *Reconciler) error {
		if len(pipelines) == 0 {
			return errors.NewValidationError("pipelines", nil, "at least one pipeline is required")
		}
		r.pipelines = pipelines
		return nil
	}
}

// WithDestinations keeps only the pipelines for the given destinations,
// in their default order.
func WithDestinations(dests ...compare.Destination) Option {
	return func(r *Reconciler) error {
		if len(dests) == 0 {
			return nil
		}
		kept := make([]*compare.Pipeline, 0, len(r.pipelines))
		for _, p := range r.pipelines {
			if slices.Contains(dests, p.Destination) {
				kept = append(kept, p)
			}
		}
		for _, d := range dests {
			if !slices.ContainsFunc(kept, func(p *compare.Pipeline) bool { return p.Destination == d }) {
				return errors.NewValidationError("destination", d, "unknown destination")
			}
		}
		r.pipelines = kept
		return nil
	}
}

// Destinations lists the destinations this reconciler compares, in order.
func (r *Reconciler) Destinations() []compare.Destination {
	out := make([]compare.Destination, 0, len(r.pipelines))
	for _, p := range r.pipelines {
		out = append(out, p.Destination)
	}
	return out
}

// Reconcile runs every pipeline over in and assembles the report. Data
// problems never fail the run; the only error is cancellation of ctx, in
// which case the result holds what was found before it.
func (r *Reconciler) Reconcile(ctx context.Context, in Inputs) (*Result, error) {
	if r.logger != nil && !logging.HasLogger(ctx) {
		ctx = logging.WithLogger(ctx, r.logger)
	}
	ctx = logging.WithOperation(ctx, "reconcile")
	logger := logging.FromContext(ctx)

	start := time.Now()
	res := &Result{
		Discrepancies: []compare.Discrepancy{},
		Stats:         make(map[compare.Destination]compare.Stats, len(r.pipelines)),
	}

	lists := make([][]compare.Discrepancy, 0, len(r.pipelines))
	finish := func() {
		res.Discrepancies = report.Assemble(lists...)
		res.Duration = time.Since(start)
	}

	for _, p := range r.pipelines {
		others, table, err := in.For(p.Destination)
		if err != nil {
			return nil, err
		}

		pr, err := p.Run(ctx, in.Truth, others, table)
		if pr != nil {
			lists = append(lists, pr.Discrepancies)
			res.Stats[p.Destination] = pr.Stats
			res.Errors = append(res.Errors, pr.Errors...)
		}
		if err != nil {
			finish()
			return res, fmt.Errorf("destination %s: %w", p.Destination, err)
		}

		logger.Info().
			Str("destination", string(p.Destination)).
			Int("matched", pr.Stats.Matched).
			Int("discrepancies", pr.Stats.Discrepancies).
			Msg("Compared destination")
	}

	finish()
	return res, nil
}
