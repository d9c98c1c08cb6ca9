package core

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatAmount renders v with exactly two decimals ("1234.50").
// Non-finite values are rendered as NaN, Infinity or -Infinity.
func FormatAmount(v float64) string {
	if s, ok := formatNonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPercent renders a whole percentage without decimals, or NaN.
func FormatPercent(v float64) string {
	if s, ok := formatNonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	return "", false
}
