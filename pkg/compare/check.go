package compare

import (
	"github.com/agentstation/bidcompare/pkg/bids"
)

// Accessor reads one comparable value from a record.
type Accessor func(bids.Record) (any, error)

// Field reads a scalar logical field through a schema.
func Field(s bids.Schema, f bids.Field) Accessor {
	return func(r bids.Record) (any, error) {
		return s.GetScalar(r, f)
	}
}

// Check compares one semantic fact of a matched truth/destination pair.
type Check struct {
	// Label names the field in the report.
	Label string

	// Applies gates the check on the truth record. nil means always.
	Applies func(truth bids.Record) (bool, error)

	// Truth and Other read the values shown in the change description.
	Truth Accessor
	Other Accessor

	// Same decides equality when the displayed values are encodings of a
	// common fact. nil compares Truth and Other with bids.LooseEqual.
	Same func(truth, other bids.Record) (bool, error)
}

// outcome of one check
type outcome struct {
	differs bool
	truth   any
	other   any
}

// evaluate runs the check. An error abandons only this check.
func (c Check) evaluate(truth, other bids.Record) (outcome, error) {
	if c.Applies != nil {
		ok, err := c.Applies(truth)
		if err != nil {
			return outcome{}, err
		}
		if !ok {
			return outcome{}, nil
		}
	}

	tv, err := c.Truth(truth)
	if err != nil {
		return outcome{}, err
	}
	ov, err := c.Other(other)
	if err != nil {
		return outcome{}, err
	}

	var same bool
	if c.Same != nil {
		if same, err = c.Same(truth, other); err != nil {
			return outcome{}, err
		}
	} else {
		same = bids.LooseEqual(tv, ov)
	}

	return outcome{differs: !same, truth: tv, other: ov}, nil
}

// SamePhone compares the phone-bid fact of two records under their own encodings.
func SamePhone(truthEnc, otherEnc PhoneEncoding) func(truth, other bids.Record) (bool, error) {
	return func(truth, other bids.Record) (bool, error) {
		tp, err := truthEnc.IsPhone(truth)
		if err != nil {
			return false, err
		}
		op, err := otherEnc.IsPhone(other)
		if err != nil {
			return false, err
		}
		return tp == op, nil
	}
}
