package billing

import (
	"math"
	"testing"
)

func TestAmountParser_Parse(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)

	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{name: "nil", raw: nil, want: 0},
		{name: "empty string", raw: "", want: 0},
		{name: "whitespace only", raw: "   ", want: 0},
		{name: "dot decimal", raw: "1234.56", want: 1234.56},
		{name: "comma decimal", raw: "1234,56", want: 1234.56},
		{name: "negative comma decimal", raw: "-1234,56", want: -1234.56},
		{name: "surrounding whitespace", raw: "  42,5 ", want: 42.5},
		{name: "integer string", raw: "500", want: 500},
		{name: "garbage", raw: "n/a", want: 0},
		{name: "double separator", raw: "1,2,3", want: 0},
		{name: "float passthrough", raw: 17.25, want: 17.25},
		{name: "int passthrough", raw: 300, want: 300},
		{name: "int64 passthrough", raw: int64(7), want: 7},
		{name: "nan coerced", raw: math.NaN(), want: 0},
		{name: "inf coerced", raw: math.Inf(1), want: 0},
		{name: "unsupported type", raw: []string{"1"}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parser.Parse(tc.raw)
			if got != tc.want {
				t.Fatalf("Parse(%v) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestAmountParser_Idempotent(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)
	inputs := []any{"1234,56", "-17.5", "0", "garbage", nil, 99.99}
	for _, raw := range inputs {
		once := parser.Parse(raw)
		twice := parser.Parse(once)
		if once != twice {
			t.Fatalf("Parse not idempotent for %v: %v then %v", raw, once, twice)
		}
	}
}

func TestAmountParser_DotOnlyConvention(t *testing.T) {
	parser := NewAmountParser(Convention{DecimalComma: false})
	if got := parser.Parse("1234,56"); got != 0 {
		t.Fatalf("expected comma string to be unparseable without DecimalComma, got %v", got)
	}
	if got := parser.Parse("1234.56"); got != 1234.56 {
		t.Fatalf("expected 1234.56, got %v", got)
	}
}
