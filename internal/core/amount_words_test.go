package core_test

import (
	"testing"

	"procurement-console/internal/core"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees Only"},
		{"0.00", "Zero Rupees Only"},
		{"1121", "1,121 Rupees Only"},
		{"1121.50", "1,121 Rupees and 50 Paisa Only"},
		{"1121.05", "1,121 Rupees and 5 Paisa Only"},
		{"0.5", "0 Rupees and 50 Paisa Only"},
		{"1234567.891", "1,234,567 Rupees and 89 Paisa Only"},
		{"999.999", "1,000 Rupees Only"},
		{"-42.10", "Minus 42 Rupees and 10 Paisa Only"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := core.AmountInWords(dec(tt.amount)); got != tt.want {
				t.Errorf("AmountInWords(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
