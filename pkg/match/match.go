// Package match resolves cross-system identity: it finds the record in a
// table whose attributes loosely equal the given values. A miss is an
// ordinary outcome reported as (nil, false), never as an error.
package match

import (
	"github.com/agentstation/bidcompare/pkg/bids"
)

// Predicate tests one record.
type Predicate func(bids.Record) bool

// Eq matches records whose attribute key loosely equals value. Records
// without the attribute never match.
func Eq(key string, value any) Predicate {
	return func(r bids.Record) bool {
		v, ok := r.Lookup(key)
		if !ok {
			return false
		}
		return bids.LooseEqual(v, value)
	}
}

// First returns the first record satisfying every predicate. With no
// predicates the first record is returned.
func First(records []bids.Record, preds ...Predicate) (bids.Record, bool) {
	for _, r := range records {
		if all(r, preds) {
			return r, true
		}
	}
	return nil, false
}

// Simple is the single-field lookup.
func Simple(records []bids.Record, key string, value any) (bids.Record, bool) {
	return First(records, Eq(key, value))
}

// Composite is the two-field lookup: both attributes must match.
func Composite(records []bids.Record, key1 string, value1 any, key2 string, value2 any) (bids.Record, bool) {
	return First(records, Eq(key1, value1), Eq(key2, value2))
}

func all(r bids.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}
