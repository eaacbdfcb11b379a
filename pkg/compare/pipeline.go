package compare

import (
	"context"
	"fmt"

	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
	"github.com/agentstation/bidcompare/pkg/match"
)

// Link ties one destination field to one field of the correlation row.
type Link struct {
	Other bids.Field
	Row   bids.Field
}

// Pipeline compares truth against one destination system.
type Pipeline struct {
	Destination Destination

	// Other is the destination's schema.
	Other bids.Schema

	// Identity is the truth field looked up in the correlation table's
	// truth-identity column.
	Identity bids.Field

	// Links locate the destination record from the correlation row. One
	// link is a single-field match, two a composite match.
	Links []Link

	Checks []Check
}

// Stats counts what a pipeline run did.
type Stats struct {
	Truth         int `json:"truth"`
	Correlated    int `json:"correlated"`
	Matched       int `json:"matched"`
	Discrepancies int `json:"discrepancies"`
	Errors        int `json:"errors"`
}

// Result of one pipeline run.
type Result struct {
	Destination   Destination
	Discrepancies []Discrepancy
	// Errors are structural problems that abandoned single checks or pairs.
	Errors []error
	Stats  Stats
}

// Run compares every truth record with its counterpart in others, using
// table to resolve identities. Misses are skipped silently. The only error
// returned is cancellation of ctx; the partial result is still returned.
func (p *Pipeline) Run(ctx context.Context, truth, others, table []bids.Record) (*Result, error) {
	ctx = logging.WithDestination(ctx, string(p.Destination))
	logger := logging.FromContext(ctx)

	res := &Result{
		Destination:   p.Destination,
		Discrepancies: []Discrepancy{},
	}

	for _, t := range truth {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
		res.Stats.Truth++

		row, ok, err := p.Correlate(t, table)
		if err != nil {
			res.Errors = append(res.Errors, err)
			logger.Debug().Err(err).Msg("Skipping truth record without identity")
			continue
		}
		if !ok {
			continue
		}
		res.Stats.Correlated++

		other, ok, err := p.Locate(row, others)
		if err != nil {
			res.Errors = append(res.Errors, err)
			logger.Debug().Err(err).Msg("Skipping correlation row without identity")
			continue
		}
		if !ok {
			continue
		}
		res.Stats.Matched++

		diffs, errs := p.Compare(t, other)
		res.Discrepancies = append(res.Discrepancies, diffs...)
		for _, err := range errs {
			logger.Debug().Err(err).Msg("Check abandoned")
		}
		res.Errors = append(res.Errors, errs...)
	}

	res.Stats.Discrepancies = len(res.Discrepancies)
	res.Stats.Errors = len(res.Errors)

	logger.Debug().
		Int("truth", res.Stats.Truth).
		Int("correlated", res.Stats.Correlated).
		Int("matched", res.Stats.Matched).
		Int("discrepancies", res.Stats.Discrepancies).
		Int("errors", res.Stats.Errors).
		Msg("Pipeline finished")

	return res, nil
}

// Correlate finds the correlation row for a truth record.
func (p *Pipeline) Correlate(truth bids.Record, table []bids.Record) (bids.Record, bool, error) {
	id, err := bids.TruthSchema.GetScalar(truth, p.Identity)
	if err != nil {
		return nil, false, err
	}
	if id == nil {
		return nil, false, nil
	}
	row, ok := match.Simple(table, bids.CorrelationSchema.MustKey(bids.FieldTruthIdentity), id)
	return row, ok, nil
}

// Locate finds the destination record a correlation row points at.
func (p *Pipeline) Locate(row bids.Record, others []bids.Record) (bids.Record, bool, error) {
	preds := make([]match.Predicate, 0, len(p.Links))
	for _, l := range p.Links {
		v, err := bids.CorrelationSchema.GetScalar(row, l.Row)
		if err != nil {
			return nil, false, err
		}
		if v == nil {
			return nil, false, nil
		}
		key, ok := p.Other.Key(l.Other)
		if !ok {
			return nil, false, errors.NewFieldError(string(p.Other.System()), string(l.Other), "", "not mapped")
		}
		preds = append(preds, match.Eq(key, v))
	}
	other, ok := match.First(others, preds...)
	return other, ok, nil
}

// Compare runs every check over one matched pair. A check that hits a
// structural problem is abandoned and reported in the returned errors; the
// remaining checks still run. Without a lot on the destination record no
// check can be reported, so the pair is abandoned as a whole.
func (p *Pipeline) Compare(truth, other bids.Record) ([]Discrepancy, []error) {
	lot, err := p.Other.GetScalar(other, bids.FieldLot)
	if err != nil {
		return nil, []error{err}
	}
	lotText := bids.Format(lot)

	var (
		diffs []Discrepancy
		errs  []error
	)
	for _, c := range p.Checks {
		out, err := c.evaluate(truth, other)
		if err != nil {
			errs = append(errs, withLot(err, lotText))
			continue
		}
		if out.differs {
			diffs = append(diffs, NewDiscrepancy(lot, c.Label, p.Destination, out.truth, out.other))
		}
	}
	return diffs, errs
}

// withLot records the destination lot on structural errors.
func withLot(err error, lot string) error {
	var fieldErr *errors.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Lot == "" {
		fieldErr.Lot = lot
	}
	return err
}
