// Package compare holds the field normalization and comparison rules for
// each truth/destination pair. A Pipeline correlates every truth record with
// at most one destination record and runs declarative Checks over the pair;
// each failing check yields one Discrepancy.
package compare

import (
	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/constants"
)

// Destination labels the system a truth record was compared against.
type Destination string

// Known destinations.
const (
	Destination2 Destination = "2"
	Destination3 Destination = "3"
)

// Field labels as they appear in the report.
const (
	LabelBidAmount   = "Bid Amount"
	LabelBidToAmount = "Bid to Amount"
	LabelBidType     = "Bid Type"
	LabelAuctionKey  = "Auction FD Key"
)

// Discrepancy is one field-level mismatch between truth and a destination.
type Discrepancy struct {
	Lot         string      `json:"lot_number" yaml:"lot_number"`
	Field       string      `json:"field" yaml:"field"`
	Destination Destination `json:"destination" yaml:"destination"`
	Diff        string      `json:"diff" yaml:"diff"`
}

// NewDiscrepancy builds a discrepancy whose Diff reads "truth ⇒ other".
func NewDiscrepancy(lot any, field string, dest Destination, truth, other any) Discrepancy {
	return Discrepancy{
		Lot:         bids.Format(lot),
		Field:       field,
		Destination: dest,
		Diff:        bids.Format(truth) + constants.DiffSeparator + bids.Format(other),
	}
}

// Row renders the discrepancy as report cells.
func (d Discrepancy) Row() []string {
	return []string{d.Lot, d.Field, string(d.Destination), d.Diff}
}
