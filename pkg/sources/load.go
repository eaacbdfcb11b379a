package sources

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
)

// Results holds one Result per endpoint, in endpoint order.
type Results []Result

// Get returns the result for id.
func (rs Results) Get(id ID) (Result, bool) {
	for _, r := range rs {
		if r.Endpoint.ID == id {
			return r, true
		}
	}
	return Result{}, false
}

// Records returns the records loaded for id, or nil.
func (rs Results) Records(id ID) []bids.Record {
	r, _ := rs.Get(id)
	return r.Records
}

// Failed returns the results that carry an error.
func (rs Results) Failed() Results {
	var out Results
	for _, r := range rs {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// LoadAll loads every endpoint concurrently, at most
// constants.MaxConcurrentLoads at a time. Individual failures are reported
// in their Result and never stop the other loads; the returned error is
// only set when ctx ends before every load finished. Each onDone callback
// runs as soon as its endpoint finishes, from that load's goroutine.
func LoadAll(ctx context.Context, loader Loader, endpoints Endpoints, onDone ...func(Result)) (Results, error) {
	results := make(Results, len(endpoints))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(constants.MaxConcurrentLoads)

	for i, ep := range endpoints {
		eg.Go(func() error {
			epCtx := logging.WithEndpoint(egCtx, string(ep.ID))
			logger := logging.FromContext(epCtx)

			res := loader.Load(epCtx, ep)
			res.Endpoint = ep
			if res.Err != nil {
				res.Records = nil
				logger.Debug().Err(res.Err).Str("url", ep.URL).Msg("Load failed")
			} else {
				logger.Debug().
					Int("records", len(res.Records)).
					Dur("duration", res.Duration).
					Msg("Loaded endpoint")
			}
			results[i] = res
			for _, fn := range onDone {
				fn(res)
			}
			return nil
		})
	}

	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return results, nil
}
