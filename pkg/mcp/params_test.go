package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToolArguments_Empty(t *testing.T) {
	assert.Equal(t, map[string]any{}, ParseToolArguments(""))
	assert.Equal(t, map[string]any{}, ParseToolArguments("   \n  "))
}

func TestParseToolArguments_JSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]any
	}{
		{
			name:  "json object",
			input: `{"symbol": "AAPL", "limit": 10}`,
			expected: map[string]any{
				"symbol": "AAPL",
				"limit":  float64(10),
			},
		},
		{
			name:  "nested json object",
			input: `{"filter": {"sector": "tech"}, "symbol": "AAPL"}`,
			expected: map[string]any{
				"filter": map[string]any{"sector": "tech"},
				"symbol": "AAPL",
			},
		},
		{
			name:     "json array wraps in input",
			input:    `["AAPL", "MSFT"]`,
			expected: map[string]any{"input": []any{"AAPL", "MSFT"}},
		},
		{
			name:     "json string wraps in input",
			input:    `"hello"`,
			expected: map[string]any{"input": "hello"},
		},
		{
			name:     "json number wraps in input",
			input:    `42`,
			expected: map[string]any{"input": float64(42)},
		},
		{
			name:     "json bool wraps in input",
			input:    `true`,
			expected: map[string]any{"input": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseToolArguments(tt.input))
		})
	}
}

func TestParseToolArguments_YAML(t *testing.T) {
	input := "symbols:\n  - AAPL\n  - MSFT\nperiod: 1d"
	expected := map[string]any{
		"symbols": []any{"AAPL", "MSFT"},
		"period":  "1d",
	}
	assert.Equal(t, expected, ParseToolArguments(input))
}

func TestParseToolArguments_KeyValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]any
	}{
		{
			name:     "colon pairs",
			input:    "symbol: AAPL, limit: 10",
			expected: map[string]any{"symbol": "AAPL", "limit": int64(10)},
		},
		{
			name:     "equals pairs",
			input:    "symbol=AAPL, verbose=true",
			expected: map[string]any{"symbol": "AAPL", "verbose": true},
		},
		{
			name:     "newline separated",
			input:    "symbol: AAPL\nthreshold: 1.5",
			expected: map[string]any{"symbol": "AAPL", "threshold": 1.5},
		},
		{
			name:     "null coercion",
			input:    "symbol: AAPL, filter: null",
			expected: map[string]any{"symbol": "AAPL", "filter": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseToolArguments(tt.input))
		})
	}
}

func TestParseToolArguments_RawFallback(t *testing.T) {
	assert.Equal(t,
		map[string]any{"input": "what moved the market today"},
		ParseToolArguments("what moved the market today"))
}
