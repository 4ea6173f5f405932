package fields

// Decode reverses Encode's mantissa scaling back to a float64, per entry's
// declared Exponent. This stands in for "the wire framework's validator"
// referenced by spec.md §8's round-trip property — the real validator
// lives in the (out-of-scope) wire codec library; this is this package's
// own self-check used by its tests.
func (e Entry) Decode() float64 {
	switch e.Exponent {
	case ExponentMicro:
		return float64(e.Mantissa) / microScale
	default:
		return float64(e.Mantissa)
	}
}
