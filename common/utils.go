package common

import "golang.org/x/exp/constraints"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// AlignUp rounds v up to the next multiple of alignment. An alignment below 2 returns v unchanged.
//
// Parameters:
//   - v: the value to align
//   - alignment: the required multiple
//
// Returns:
//   - T: the smallest multiple of alignment that is >= v
func AlignUp[T constraints.Integer](v, alignment T) T {
	if alignment < 2 {
		return v
	}
	if rem := v % alignment; rem != 0 {
		return v + alignment - rem
	}
	return v
}
