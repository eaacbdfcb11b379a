// Package bids holds the record model shared by every system taking part in
// a reconciliation: the opaque decoded record, the per-system schemas that
// map logical fields onto concrete attribute names, and the value helpers
// every comparison goes through.
package bids

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/bidcompare/pkg/errors"
)

// Record is one decoded JSON object as reported by one system. Numbers are
// kept as json.Number so their original text reaches the report.
type Record map[string]any

// Lookup returns the raw attribute value and whether the attribute exists.
// A JSON null is an existing attribute with a nil value.
func (r Record) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// Decode reads a JSON array of objects. A bare null decodes to no records.
func Decode(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, errors.NewParseError("json", "", "empty document", err)
		}
		return nil, errors.WrapParse("json", "", err)
	}

	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		var rec Record
		itemDec := json.NewDecoder(bytes.NewReader(item))
		itemDec.UseNumber()
		if err := itemDec.Decode(&rec); err != nil {
			return nil, errors.NewParseError("json", "", fmt.Sprintf("element %d is not an object", i), err)
		}
		if rec == nil {
			return nil, errors.NewParseError("json", "", fmt.Sprintf("element %d is null", i), nil)
		}
		records = append(records, rec)
	}

	return records, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) ([]Record, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeYAML reads a YAML sequence of mappings, the fixture form of Decode.
func DecodeYAML(r io.Reader) ([]Record, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, errors.NewParseError("yaml", "", "empty document", err)
		}
		return nil, errors.WrapParse("yaml", "", err)
	}

	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		if item == nil {
			return nil, errors.NewParseError("yaml", "", fmt.Sprintf("element %d is null", i), nil)
		}
		records = append(records, Record(item))
	}
	return records, nil
}
