package bids

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Scalar renders v as text. Objects and arrays are not scalars.
func Scalar(v any) (string, bool) {
	switch v.(type) {
	case nil:
		return "", true
	case map[string]any, []any, Record:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// numeric parses s as a decimal number.
func numeric(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// IsNumeric reports whether v is a number or a string holding one.
func IsNumeric(v any) bool {
	s, ok := Scalar(v)
	if !ok || v == nil {
		return false
	}
	_, ok = numeric(s)
	return ok
}

// LooseEqual is the one equality used for identities and values across
// systems. Two numeric-like values compare by number ("5" equals 5, "100.0"
// equals 100); anything else compares by its text. nil only equals nil, and
// non-scalar values never compare equal.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	as, ok := Scalar(a)
	if !ok {
		return false
	}
	bs, ok := Scalar(b)
	if !ok {
		return false
	}

	if ad, ok := numeric(as); ok {
		if bd, ok := numeric(bs); ok {
			return ad.Equal(bd)
		}
	}

	return as == bs
}

// CompareScalars orders two values and returns -1, 0 or +1. Empty values
// come first, then numeric-like values in numeric order, then everything
// else by text, so the order stays transitive over mixed lots.
func CompareScalars(a, b any) int {
	as, _ := Scalar(a)
	bs, _ := Scalar(b)

	ad, aNum := numeric(as)
	bd, bNum := numeric(bs)
	if c := cmp.Compare(scalarRank(as, aNum), scalarRank(bs, bNum)); c != 0 {
		return c
	}
	if aNum {
		return ad.Cmp(bd)
	}
	return strings.Compare(as, bs)
}

func scalarRank(s string, isNum bool) int {
	switch {
	case s == "":
		return 0
	case isNum:
		return 1
	default:
		return 2
	}
}

// Format renders a value for a change description. nil renders empty.
func Format(v any) string {
	if s, ok := Scalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// CanonicalNumber returns the canonical decimal text of a numeric string,
// so that "100.0", "1e2" and "100" share one form.
func CanonicalNumber(s string) (string, bool) {
	d, ok := numeric(s)
	if !ok {
		return "", false
	}
	return d.String(), true
}
