package binengine

import "math"

// roundTo6dp rounds x to 6 decimal places using round-half-up
// (floor(x + 0.5) scaled), per spec.md §4.4 and the open question in §9.
//
// floor(x + 0.5) rounds ties away from zero only for non-negative x; for
// negative x it rounds ties toward zero under IEEE-754 (e.g. -0.5 -> 0,
// not -1). spec.md §9 notes call sites always pass non-negative values in
// practice — see round_test.go for both cases pinned down explicitly.
func roundTo6dp(x float64) float64 {
	const scale = 1e6
	return math.Floor(x*scale+0.5) / scale
}

// mantissaOf6dp converts an already-rounded-to-6dp value into the integer
// mantissa the wire encoding transmits with exponent 10^-6.
func mantissaOf6dp(x float64) int64 {
	const scale = 1e6
	return int64(math.Floor(x*scale + 0.5))
}
