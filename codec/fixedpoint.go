// Package codec provides the deterministic binary encoding primitives used by
// the canonical action encoder: fixed-point decimal conversion and a
// little-endian, length-prefixed byte writer.
package codec

import (
	"errors"
	"fmt"
	"math"
)

// Scale is the fixed-point scale for all decimal fields (price, size,
// leverage). A decimal value v encodes as round(v * Scale) in a uint64.
//
// This constant is part of the wire compatibility contract with the venue's
// verifier and MUST NOT change.
const Scale = 100_000_000 // 1e8

// maxFixed is the largest decimal value representable at Scale without
// overflowing the uint64-safe integer range of float64 arithmetic.
// 2^53 / 1e8 leaves every representable input exactly convertible.
const maxFixed = float64(1<<53) / Scale

// ErrRange is returned when a decimal value cannot be represented as a
// fixed-point integer: NaN, infinite, negative, or too large.
var ErrRange = errors.New("value out of fixed-point range")

// ToFixed converts a decimal value to its fixed-point integer encoding.
//
// INVARIANT: ToFixed is deterministic - the same input always produces the
// same integer, independent of platform or call site.
//
// Returns ErrRange for NaN, ±Inf, negative values, and values above the
// representable maximum.
func ToFixed(v float64) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite value", ErrRange)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %g", ErrRange, v)
	}
	if v > maxFixed {
		return 0, fmt.Errorf("%w: %g exceeds maximum %g", ErrRange, v, maxFixed)
	}
	return uint64(math.Round(v * Scale)), nil
}

// FromFixed converts a fixed-point integer back to its decimal value.
// Inverse of ToFixed up to the 1e-8 precision of the scale.
func FromFixed(u uint64) float64 {
	return float64(u) / Scale
}
