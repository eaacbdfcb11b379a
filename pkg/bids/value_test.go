package bids_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/bidcompare/pkg/bids"
)

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "string and int", a: "5", b: 5, want: true},
		{name: "json number and int", a: json.Number("100"), b: 100, want: true},
		{name: "decimal forms", a: "100.0", b: json.Number("100"), want: true},
		{name: "float and string", a: 12.5, b: "12.50", want: true},
		{name: "different numbers", a: json.Number("100"), b: json.Number("150"), want: false},
		{name: "same sentinel", a: "P", b: "P", want: true},
		{name: "sentinel and number", a: "P", b: 200, want: false},
		{name: "case sensitive text", a: "abc", b: "ABC", want: false},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "nil and empty string", a: nil, b: "", want: false},
		{name: "nil and zero", a: nil, b: 0, want: false},
		{name: "padded number", a: " 7 ", b: 7, want: true},
		{name: "bools", a: true, b: "true", want: true},
		{name: "object never equal", a: map[string]any{"a": 1}, b: map[string]any{"a": 1}, want: false},
		{name: "array never equal", a: []any{1}, b: "1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bids.LooseEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, bids.LooseEqual(tt.b, tt.a), "LooseEqual must be symmetric")
		})
	}
}

func TestCompareScalars(t *testing.T) {
	assert.Equal(t, -1, bids.CompareScalars("9", "10"), "numeric when both numeric")
	assert.Equal(t, 1, bids.CompareScalars("L9", "L10"), "lexical otherwise")
	assert.Equal(t, 0, bids.CompareScalars(json.Number("3"), "3.0"))
	assert.Equal(t, -1, bids.CompareScalars("10", "A"))
	assert.Equal(t, -1, bids.CompareScalars(nil, "1"))
	assert.Equal(t, -1, bids.CompareScalars("10", "1a"), "numeric before text")
	assert.Equal(t, 1, bids.CompareScalars("1a", "9"))
	assert.Equal(t, 0, bids.CompareScalars(nil, ""))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", bids.Format(nil))
	assert.Equal(t, "100", bids.Format(json.Number("100")))
	assert.Equal(t, "100", bids.Format(float64(100)))
	assert.Equal(t, "P", bids.Format("P"))
	assert.Equal(t, "[1 2]", bids.Format([]any{1, 2}))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, bids.IsNumeric("5"))
	assert.True(t, bids.IsNumeric(json.Number("1.25")))
	assert.False(t, bids.IsNumeric("P"))
	assert.False(t, bids.IsNumeric(nil))
	assert.False(t, bids.IsNumeric(""))
}

func TestCanonicalNumber(t *testing.T) {
	for _, in := range []string{"100", "100.0", "1e2", " 100 "} {
		got, ok := bids.CanonicalNumber(in)
		assert.True(t, ok, in)
		assert.Equal(t, "100", got, in)
	}
	_, ok := bids.CanonicalNumber("F1")
	assert.False(t, ok)
}
