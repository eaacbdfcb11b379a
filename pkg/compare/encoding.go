package compare

import (
	"github.com/agentstation/bidcompare/pkg/bids"
)

// Phone bid sentinels. Truth and source 2 put a letter in bid_amount; source
// 3 puts a digit in BidType.
const (
	PhoneBidLetter = "P"
	PhoneBidDigit  = "9"
)

// PhoneEncoding reads the "placed by phone" fact from one system's bid type field.
type PhoneEncoding struct {
	Schema   bids.Schema
	Sentinel string
}

// Phone encodings per system.
var (
	TruthPhone   = PhoneEncoding{Schema: bids.TruthSchema, Sentinel: PhoneBidLetter}
	Source2Phone = PhoneEncoding{Schema: bids.Source2Schema, Sentinel: PhoneBidLetter}
	Source3Phone = PhoneEncoding{Schema: bids.Source3Schema, Sentinel: PhoneBidDigit}
)

// IsPhone reports whether r records a phone bid.
func (e PhoneEncoding) IsPhone(r bids.Record) (bool, error) {
	v, err := e.Schema.GetScalar(r, bids.FieldBidType)
	if err != nil {
		return false, err
	}
	return bids.LooseEqual(v, e.Sentinel), nil
}

// EffectiveAmount returns the amount a truth bid was placed for: the
// bid_to_amount of a phone bid, bid_amount otherwise.
func EffectiveAmount(truth bids.Record) (any, error) {
	phone, err := TruthPhone.IsPhone(truth)
	if err != nil {
		return nil, err
	}
	if phone {
		return bids.TruthSchema.GetScalar(truth, bids.FieldBidToAmount)
	}
	return bids.TruthSchema.GetScalar(truth, bids.FieldBidAmount)
}
