// Package scale provides the normalization and guarded-division helpers
// shared by the scoring and prioritization packages.
package scale

import "math"

// Bounds describes the [Min, Max] range used to normalize a raw metric
// onto the 0-100 scale.
type Bounds struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

// Valid reports whether the bounds describe a non-empty range.
func (b Bounds) Valid() bool {
	return b.Min < b.Max
}

// Norm linearly rescales x from [lo, hi] onto [0, 100], clamping values
// outside the range.
func Norm(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp((x-lo)/(hi-lo)*100, 0, 100)
}

// NormBounds is Norm using a Bounds value.
func NormBounds(x float64, b Bounds) float64 {
	return Norm(x, b.Min, b.Max)
}

// Clamp restricts x to the inclusive range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Ratio returns numerator/denominator and true, or (0, false) when the
// denominator is zero. Callers use the ok result instead of ever seeing
// NaN or Inf.
func Ratio(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// Round rounds to the nearest integer, away from zero on halves.
func Round(x float64) float64 {
	return math.Round(x)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
