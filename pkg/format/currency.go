// Package format provides display formatting for rupiah amounts.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Rupiah returns a whole-rupiah string with a currency prefix and
// thousands separators (e.g., "Rp 1,234,567").
func Rupiah(amount float64) string {
	formatted := groupDigits(math.Abs(amount))
	if amount < 0 {
		return "-Rp " + formatted
	}
	return "Rp " + formatted
}

// Juta returns a price expressed in millions of rupiah with the "jt"
// suffix used throughout the dashboard (e.g., "1,250 jt").
func Juta(amount float64) string {
	return groupDigits(math.Abs(amount)) + " jt"
}

func groupDigits(value float64) string {
	intPart := fmt.Sprintf("%.0f", value)
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
