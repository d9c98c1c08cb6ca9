package core

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "0.00"},
		{12, "12.00"},
		{1234.5, "1234.50"},
		{99.999, "100.00"},
		{-3.1, "-3.10"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.out {
			t.Fatalf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(75); got != "75" {
		t.Fatalf("expected 75, got %q", got)
	}
	if got := FormatPercent(math.NaN()); got != "NaN" {
		t.Fatalf("expected NaN, got %q", got)
	}
}
