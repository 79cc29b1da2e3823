package billing

import (
	"math"
	"strconv"
	"strings"
)

// Convention describes the numeric formatting convention of an external feed.
type Convention struct {
	// DecimalComma treats commas as decimal separators. The regional
	// accounting feed emits both "1234,56" and "1234.56" for the same field.
	DecimalComma bool
}

// DefaultConvention matches the accounting feed this portal consumes:
// comma or dot decimal separator, no thousands grouping, optional whitespace.
var DefaultConvention = Convention{DecimalComma: true}

// AmountParser normalizes heterogeneous numeric encodings into float64.
// Parse is total: it never fails, unparseable input degrades to zero so that
// downstream reconciliation needs no defensive checks.
type AmountParser struct {
	conv Convention
}

// NewAmountParser constructs a parser for the given convention.
func NewAmountParser(conv Convention) AmountParser {
	return AmountParser{conv: conv}
}

// Parse normalizes a raw value from the external feed.
// nil and empty strings parse to zero; numeric values pass through with
// NaN/Inf coerced to zero; strings are trimmed and re-separated before parsing.
func (p AmountParser) Parse(raw any) float64 {
	switch value := raw.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(value)
	case float32:
		return sanitize(float64(value))
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		return p.parseString(value)
	default:
		return 0
	}
}

func (p AmountParser) parseString(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if p.conv.DecimalComma {
		value = strings.ReplaceAll(value, ",", ".")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return sanitize(parsed)
}

func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
