// Package table converts command results into rows for tabular output.
package table

import (
	"strconv"
	"time"

	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/match"
	"github.com/agentstation/bidcompare/pkg/report"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents data formatted for table output.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// DiscrepanciesToTableData converts a report to table format.
func DiscrepanciesToTableData(ds []compare.Discrepancy) Data {
	return Data{
		Headers:         report.Headers,
		Rows:            report.Rows(ds),
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignCenter, AlignLeft},
	}
}

// StatsToTableData converts per-destination pipeline counts to table format.
func StatsToTableData(stats map[compare.Destination]compare.Stats, order []compare.Destination) Data {
	rows := make([][]string, 0, len(order))
	for _, d := range order {
		s, ok := stats[d]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			string(d),
			strconv.Itoa(s.Truth),
			strconv.Itoa(s.Correlated),
			strconv.Itoa(s.Matched),
			strconv.Itoa(s.Discrepancies),
			strconv.Itoa(s.Errors),
		})
	}

	return Data{
		Headers:         []string{"Destination", "Truth", "Correlated", "Matched", "Differences", "Errors"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// EndpointsToTableData converts endpoints to table format.
func EndpointsToTableData(eps sources.Endpoints) Data {
	rows := make([][]string, 0, len(eps))
	for _, ep := range eps {
		kind := "file"
		if sources.IsRemote(ep.URL) {
			kind = "http"
		}
		rows = append(rows, []string{string(ep.ID), ep.ID.Description(), kind, ep.URL})
	}

	return Data{
		Headers: []string{"ID", "Description", "Kind", "URL"},
		Rows:    rows,
	}
}

// LoadResultsToTableData summarizes endpoint loads.
func LoadResultsToTableData(results sources.Results) Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		rows = append(rows, []string{
			string(r.Endpoint.ID),
			strconv.Itoa(len(r.Records)),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}

	return Data{
		Headers:         []string{"Endpoint", "Records", "Duration", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// DuplicatesToTableData converts duplicate correlation keys to table format.
func DuplicatesToTableData(key string, dups []match.Duplicate) Data {
	rows := make([][]string, 0, len(dups))
	for _, d := range dups {
		rows = append(rows, []string{d.Value, strconv.Itoa(d.Count)})
	}

	return Data{
		Headers:         []string{key, "Rows"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}
