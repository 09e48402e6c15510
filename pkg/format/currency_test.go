package format

import "testing"

func TestRupiah(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Millions", 7_649_000, "Rp 7,649,000"},
		{"Billions", 1_000_000_000, "Rp 1,000,000,000"},
		{"Small amount", 950, "Rp 950"},
		{"Negative", -1_234.56, "-Rp 1,235"},
		{"Zero", 0, "Rp 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rupiah(tt.amount); got != tt.expected {
				t.Errorf("Rupiah(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestJuta(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Four digits", 1250, "1,250 jt"},
		{"Three digits", 950, "950 jt"},
		{"Rounded", 1250.4, "1,250 jt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Juta(tt.amount); got != tt.expected {
				t.Errorf("Juta(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}
