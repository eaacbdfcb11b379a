package compare

import (
	"github.com/agentstation/bidcompare/pkg/bids"
)

// NewSource2Pipeline compares truth with source 2.
//
// Identity goes truth user_fd_key -> table uuid_text, then table fd_key ->
// source 2 user_fd_key. Source 2 keeps the phone sentinel in bid_amount like
// truth does, so bid amounts compare directly; for phone bids truth's
// bid_to_amount is compared with the amount source 2 displays.
func NewSource2Pipeline() *Pipeline {
	return &Pipeline{
		Destination: Destination2,
		Other:       bids.Source2Schema,
		Identity:    bids.FieldBidderFDKey,
		Links: []Link{
			{Other: bids.FieldBidderFDKey, Row: bids.FieldOtherIdentity},
		},
		Checks: []Check{
			{
				Label: LabelBidAmount,
				Truth: Field(bids.TruthSchema, bids.FieldBidAmount),
				Other: Field(bids.Source2Schema, bids.FieldBidAmount),
			},
			{
				Label:   LabelBidToAmount,
				Applies: TruthPhone.IsPhone,
				Truth:   Field(bids.TruthSchema, bids.FieldBidToAmount),
				Other:   Field(bids.Source2Schema, bids.FieldDisplayAmount),
			},
		},
	}
}

// NewSource3Pipeline compares truth with source 3.
//
// Identity goes truth user_uuid_text -> table uuid_text, then the composite
// (Lot_FD_Key, Bidder_FD_Key) = (fd_key, uuid_text). Phone bids are a digit
// in BidType, so bid type compares the derived phone fact rather than the
// sentinels, and the amount compares truth's effective amount.
func NewSource3Pipeline() *Pipeline {
	return &Pipeline{
		Destination: Destination3,
		Other:       bids.Source3Schema,
		Identity:    bids.FieldBidderUUID,
		Links: []Link{
			{Other: bids.FieldLotKey, Row: bids.FieldOtherIdentity},
			{Other: bids.FieldBidderUUID, Row: bids.FieldTruthIdentity},
		},
		Checks: []Check{
			{
				Label: LabelBidType,
				Truth: Field(bids.TruthSchema, bids.FieldBidType),
				Other: Field(bids.Source3Schema, bids.FieldBidType),
				Same:  SamePhone(TruthPhone, Source3Phone),
			},
			{
				Label: LabelBidAmount,
				Truth: EffectiveAmount,
				Other: Field(bids.Source3Schema, bids.FieldBidAmount),
			},
			{
				Label: LabelAuctionKey,
				Truth: Field(bids.TruthSchema, bids.FieldAuctionKey),
				Other: Field(bids.Source3Schema, bids.FieldAuctionKey),
			},
		},
	}
}
