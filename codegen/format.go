package codegen

import (
	"fmt"
	"math"
	"math/big"
)

// FormatFloat renders v with exactly prec fractional digits, rounding half
// away from zero. The conversion goes through the exact rational value of the
// float64, so the output is deterministic and locale-independent.
func FormatFloat(v float64, prec int) (string, error) {
	if prec < 0 {
		return "", fmt.Errorf("precision must be >= 0, got %d", prec)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("cannot format non-finite value %v", v)
	}
	return new(big.Rat).SetFloat64(v).FloatString(prec), nil
}
