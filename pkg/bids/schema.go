package bids

import (
	"github.com/agentstation/bidcompare/pkg/errors"
)

// Field is a logical field name shared across systems.
type Field string

// Logical bid fields.
const (
	FieldLot           Field = "lot"
	FieldLotKey        Field = "lot_key"
	FieldBidderFDKey   Field = "bidder_fd_key"
	FieldBidderUUID    Field = "bidder_uuid"
	FieldBidAmount     Field = "bid_amount"
	FieldBidToAmount   Field = "bid_to_amount"
	FieldDisplayAmount Field = "display_amount"
	FieldBidType       Field = "bid_type"
	FieldAuctionKey    Field = "auction_key"
)

// Logical correlation-table fields.
const (
	// FieldTruthIdentity is the user identifier in the form the truth system uses.
	FieldTruthIdentity Field = "truth_identity"
	// FieldOtherIdentity is the same user in the other system's form.
	FieldOtherIdentity Field = "other_identity"
)

// System names a record producer.
type System string

// Known systems.
const (
	SystemTruth       System = "truth"
	SystemSource2     System = "source2"
	SystemSource3     System = "source3"
	SystemCorrelation System = "correlation"
)

// Schema translates logical fields into one system's attribute names.
type Schema struct {
	system System
	keys   map[Field]string
}

// NewSchema creates a schema for system. The map is copied.
func NewSchema(system System, keys map[Field]string) Schema {
	copied := make(map[Field]string, len(keys))
	for f, k := range keys {
		copied[f] = k
	}
	return Schema{system: system, keys: copied}
}

// The fixed schemas of the three bid systems and the correlation tables.
var (
	TruthSchema = NewSchema(SystemTruth, map[Field]string{
		FieldBidderFDKey: "user_fd_key",
		FieldBidderUUID:  "user_uuid_text",
		FieldBidAmount:   "bid_amount",
		FieldBidToAmount: "bid_to_amount",
		FieldBidType:     "bid_amount",
		FieldAuctionKey:  "auction_fd_key",
	})

	Source2Schema = NewSchema(SystemSource2, map[Field]string{
		FieldLot:           "LotNumber",
		FieldBidderFDKey:   "user_fd_key",
		FieldBidAmount:     "bid_amount",
		FieldDisplayAmount: "BidAmount",
		FieldBidType:       "bid_amount",
	})

	Source3Schema = NewSchema(SystemSource3, map[Field]string{
		FieldLot:           "LotNumber",
		FieldLotKey:        "Lot_FD_Key",
		FieldBidderUUID:    "Bidder_FD_Key",
		FieldBidAmount:     "BidAmount",
		FieldDisplayAmount: "BidAmount",
		FieldBidType:       "BidType",
		FieldAuctionKey:    "Auction_FD_Key",
	})

	CorrelationSchema = NewSchema(SystemCorrelation, map[Field]string{
		FieldTruthIdentity: "uuid_text",
		FieldOtherIdentity: "fd_key",
	})
)

// System returns the system this schema describes.
func (s Schema) System() System {
	return s.system
}

// Key returns the attribute name for f.
func (s Schema) Key(f Field) (string, bool) {
	k, ok := s.keys[f]
	return k, ok
}

// MustKey returns the attribute name for f and panics when f is unmapped.
// Only use it with the fixed schemas above.
func (s Schema) MustKey(f Field) string {
	k, ok := s.keys[f]
	if !ok {
		panic("bids: field " + string(f) + " not mapped for " + string(s.system))
	}
	return k
}

// Get returns the value of f in r. An unmapped field or an absent
// attribute is a structural error.
func (s Schema) Get(r Record, f Field) (any, error) {
	key, ok := s.keys[f]
	if !ok {
		return nil, errors.NewFieldError(string(s.system), string(f), "", "not mapped")
	}
	v, ok := r.Lookup(key)
	if !ok {
		return nil, errors.NewFieldError(string(s.system), string(f), key, "missing from record")
	}
	return v, nil
}

// GetScalar is Get restricted to scalar values (strings, numbers, booleans, null).
func (s Schema) GetScalar(r Record, f Field) (any, error) {
	v, err := s.Get(r, f)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	if _, ok := Scalar(v); !ok {
		key, _ := s.Key(f)
		return nil, errors.NewFieldError(string(s.system), string(f), key, "not a scalar value")
	}
	return v, nil
}
