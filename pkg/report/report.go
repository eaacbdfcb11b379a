// Package report assembles discrepancies from every destination into the
// single lot-ordered list the presentation layer renders.
package report

import (
	"slices"

	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/compare"
)

// Headers are the column titles of the rendered report.
var Headers = []string{"Lot Number", "Field", "Destination", "Diff"}

// Assemble concatenates the lists in argument order and stable-sorts the
// result by lot. Entries sharing a lot keep their relative order, so a
// destination-2 entry stays ahead of a destination-3 entry for the same lot
// when the lists are passed in that order.
func Assemble(lists ...[]compare.Discrepancy) []compare.Discrepancy {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	out := make([]compare.Discrepancy, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}

	slices.SortStableFunc(out, func(a, b compare.Discrepancy) int {
		return bids.CompareScalars(a.Lot, b.Lot)
	})
	return out
}

// Rows renders discrepancies as table cells in report column order.
func Rows(ds []compare.Discrepancy) [][]string {
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, d.Row())
	}
	return rows
}

// Group is the run of discrepancies that share one lot.
type Group struct {
	Lot     string
	Entries []compare.Discrepancy
}

// GroupByLot splits an assembled report into per-lot groups, preserving order.
func GroupByLot(ds []compare.Discrepancy) []Group {
	var groups []Group
	for _, d := range ds {
		if len(groups) > 0 && bids.CompareScalars(groups[len(groups)-1].Lot, d.Lot) == 0 {
			last := &groups[len(groups)-1]
			last.Entries = append(last.Entries, d)
			continue
		}
		groups = append(groups, Group{Lot: d.Lot, Entries: []compare.Discrepancy{d}})
	}
	return groups
}

// Summary counts discrepancies per destination.
type Summary struct {
	Total         int                         `json:"total" yaml:"total"`
	Lots          int                         `json:"lots" yaml:"lots"`
	ByDestination map[compare.Destination]int `json:"by_destination" yaml:"by_destination"`
}

// Summarize counts an assembled report.
func Summarize(ds []compare.Discrepancy) Summary {
	s := Summary{
		Total:         len(ds),
		Lots:          len(GroupByLot(ds)),
		ByDestination: make(map[compare.Destination]int),
	}
	for _, d := range ds {
		s.ByDestination[d.Destination]++
	}
	return s
}
