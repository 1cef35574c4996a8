package utils

import "math"

// Round2 rounds a money amount to cents. Every multiplication and summation
// in the billing paths rounds through here, not just the final total, so that
// line-item totals and document totals stay consistent with each other.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
