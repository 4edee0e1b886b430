package util

import "testing"

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{0.05, "0.05"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
		{25211.25, "25,211.25"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyAndUnits(t *testing.T) {
	t.Parallel()

	if got := FormatMoney(1100, "EUR"); got != "1,100.00 EUR" {
		t.Errorf("FormatMoney = %q", got)
	}
	if got := FormatUnits(26250); got != "26,250 units" {
		t.Errorf("FormatUnits = %q", got)
	}
	if got := FormatPercent(17.69543); got != "17.70%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("FormatPercent(0) = %q", got)
	}
}
