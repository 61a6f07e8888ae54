package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "plain number", value: 1234.5, expected: "$1,234.50"},
		{name: "zero", value: 0, expected: "$0.00"},
		{name: "rounds to cents", value: 99.999, expected: "$100.00"},
		{name: "millions grouped", value: 12345678.9, expected: "$12,345,678.90"},
		{name: "negative", value: -42.5, expected: "-$42.50"},
		{name: "numeric string", value: "250000", expected: "$250,000.00"},
		{name: "nil", value: nil, expected: NotAvailable},
		{name: "non-numeric string", value: "abc", expected: NotAvailable},
		{name: "NaN", value: math.NaN(), expected: NotAvailable},
		{name: "infinity", value: math.Inf(1), expected: NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Currency(tt.value))
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "two decimals", value: 8.1234, expected: "8.12%"},
		{name: "pads decimals", value: 6.55, expected: "6.55%"},
		{name: "whole number", value: 100, expected: "100.00%"},
		{name: "zero", value: 0.0, expected: "0.00%"},
		{name: "negative", value: -1.5, expected: "-1.50%"},
		{name: "string input", value: "55.4999", expected: "55.50%"},
		{name: "nil", value: nil, expected: NotAvailable},
		{name: "struct input", value: struct{}{}, expected: NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percentage(tt.value))
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "small count", value: 100, expected: "100"},
		{name: "grouped", value: 12345, expected: "12,345"},
		{name: "rounds fraction", value: 99.7, expected: "100"},
		{name: "negative", value: -1234.6, expected: "-1,235"},
		{name: "negative fraction rounds to zero", value: -0.4, expected: "0"},
		{name: "zero", value: 0, expected: "0"},
		{name: "float from json", value: float64(2048), expected: "2,048"},
		{name: "nil", value: nil, expected: NotAvailable},
		{name: "garbage", value: "n/a", expected: NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Count(tt.value))
		})
	}
}

func TestFormattersAreDeterministic(t *testing.T) {
	inputs := []any{0, 1, -1, 8.1234, "42", nil, "x", math.NaN()}
	for _, input := range inputs {
		assert.Equal(t, Currency(input), Currency(input))
		assert.Equal(t, Percentage(input), Percentage(input))
		assert.Equal(t, Count(input), Count(input))
	}
}

func TestApply(t *testing.T) {
	assert.Equal(t, "$5.00", Apply(KindCurrency, 5))
	assert.Equal(t, "5.00%", Apply(KindPercentage, 5))
	assert.Equal(t, "5", Apply(KindCount, 5))
	assert.Equal(t, "Passed", Apply(KindText, "Passed"))
	assert.Equal(t, NotAvailable, Apply(KindText, nil))
}
