package domain

import (
	"fmt"
	"math"
	"strings"
)

// DiscountAmount rounds subtotal × rate/100 half away from zero to the
// minor unit.
func DiscountAmount(subtotal int64, rate float64) int64 {
	return int64(math.Round(float64(subtotal) * rate / 100.0))
}

// FormatAmount renders minor units as a decimal string with trailing
// zeros trimmed ("90", "90.5", "90.55"). Used for audit values.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	s := fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// FormatRate renders a discount rate the same way ("10", "12.5").
func FormatRate(rate float64) string {
	s := fmt.Sprintf("%.2f", rate)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}
