// Package numeric holds the rounding and percentile helpers shared by the analytics packages.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percentile returns the q-th quantile (0 <= q <= 1) of an ascending slice
// using linear interpolation between closest ranks. Empty input gives 0.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Bucket returns the index of the first cut-point that is >= x, i.e. the bucket of x
// for right-closed intervals (-inf, c0], (c0, c1], ..., (cn-1, +inf).
func Bucket(x float64, cuts []float64) int {
	for i, c := range cuts {
		if x <= c {
			return i
		}
	}
	return len(cuts)
}
