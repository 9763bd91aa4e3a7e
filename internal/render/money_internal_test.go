package render

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1,200.50": "1200.5",
		"$15":      "15",
		" 7 ":      "7",
		"":         "0",
		"abc":      "0",
		"1.2.3":    "0",
	}
	for in, want := range tests {
		if got := parseAmount(in).String(); got != want {
			t.Errorf("parseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLineAmount(t *testing.T) {
	got := lineAmount(decimal.RequireFromString("150"), 2, decimal.RequireFromString("10"))
	if !got.Equal(decimal.RequireFromString("330")) {
		t.Errorf("lineAmount = %s, want 330", got)
	}
	got = lineAmount(decimal.RequireFromString("19.99"), 3, decimal.Zero)
	if !got.Equal(decimal.RequireFromString("59.97")) {
		t.Errorf("lineAmount = %s, want 59.97", got)
	}
}

func TestParseColor(t *testing.T) {
	if c := parseColor("#fff", black); c != white {
		t.Errorf("#fff = %v", c)
	}
	if c := parseColor("#1E3A8A", black); c != (rgb{30, 58, 138}) {
		t.Errorf("#1E3A8A = %v", c)
	}
	if c := parseColor("red", gray300); c != gray300 {
		t.Errorf("named colors fall back, got %v", c)
	}
}

func TestDisplayDate(t *testing.T) {
	if got := displayDate("2026-03-01"); got != "March 1, 2026" {
		t.Errorf("displayDate = %q", got)
	}
	if got := displayDate("next week"); got != "next week" {
		t.Errorf("displayDate passthrough = %q", got)
	}
}
