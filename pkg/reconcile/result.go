package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/report"
)

// Result represents the outcome of a reconciliation run
type Result struct {
	// Discrepancies across all destinations, stable-sorted by lot
	Discrepancies []compare.Discrepancy

	// Stats per destination
	Stats map[compare.Destination]compare.Stats

	// Errors are structural record problems; each abandoned one check or pair
	Errors []error

	// Duration of the run
	Duration time.Duration
}

// HasDiscrepancies returns true if any field mismatch was found
func (r *Result) HasDiscrepancies() bool {
	return len(r.Discrepancies) > 0
}

// HasErrors returns true if any structural error was recorded
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary counts the discrepancies.
func (r *Result) Summary() report.Summary {
	return report.Summarize(r.Discrepancies)
}

// String returns a one-line human-readable summary of the result
func (r *Result) String() string {
	s := r.Summary()
	if s.Total == 0 {
		return fmt.Sprintf("No differences found (%d structural errors)", len(r.Errors))
	}
	return fmt.Sprintf("%d differences across %d lots (%d structural errors)", s.Total, s.Lots, len(r.Errors))
}
