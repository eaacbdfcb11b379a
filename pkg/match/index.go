package match

import (
	"github.com/agentstation/bidcompare/pkg/bids"
)

// Index pre-keys a table by one attribute. The first record per key wins,
// matching First; later records with the same key are kept as duplicates.
type Index struct {
	key        string
	byValue    map[string]bids.Record
	order      []string
	duplicates map[string]int
	unkeyed    int
}

// Duplicate describes a key seen more than once.
type Duplicate struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// NewIndex builds an index over records keyed by attribute key. Keys are
// normalized the same way LooseEqual compares, so "5" and 5 collide.
func NewIndex(records []bids.Record, key string) *Index {
	idx := &Index{
		key:        key,
		byValue:    make(map[string]bids.Record, len(records)),
		duplicates: make(map[string]int),
	}

	for _, r := range records {
		v, ok := r.Lookup(key)
		if !ok || v == nil {
			idx.unkeyed++
			continue
		}
		norm, ok := normalize(v)
		if !ok {
			idx.unkeyed++
			continue
		}
		if _, seen := idx.byValue[norm]; seen {
			idx.duplicates[norm]++
			continue
		}
		idx.byValue[norm] = r
		idx.order = append(idx.order, norm)
	}

	return idx
}

// Key returns the attribute the index is keyed by.
func (idx *Index) Key() string {
	return idx.key
}

// Lookup returns the first record whose key equals value.
func (idx *Index) Lookup(value any) (bids.Record, bool) {
	norm, ok := normalize(value)
	if !ok {
		return nil, false
	}
	r, ok := idx.byValue[norm]
	return r, ok
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.byValue)
}

// Unkeyed returns how many records had no usable key.
func (idx *Index) Unkeyed() int {
	return idx.unkeyed
}

// Duplicates lists keys that occur more than once, in first-seen order.
func (idx *Index) Duplicates() []Duplicate {
	var dups []Duplicate
	for _, v := range idx.order {
		if n := idx.duplicates[v]; n > 0 {
			dups = append(dups, Duplicate{Value: v, Count: n + 1})
		}
	}
	return dups
}

// normalize maps a scalar onto the key space LooseEqual uses: numbers by
// their canonical decimal text, everything else by its text.
func normalize(v any) (string, bool) {
	s, ok := bids.Scalar(v)
	if !ok {
		return "", false
	}
	if c, ok := bids.CanonicalNumber(s); ok {
		return c, true
	}
	return s, true
}
