package common

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

// AlignUp rounds value up to the next multiple of alignment.
// An alignment of zero or one returns value unchanged.
//
// Parameters:
//   - value: the value to round
//   - alignment: the required multiple (must be positive)
//
// Returns:
//   - int: the smallest multiple of alignment that is >= value
func AlignUp(value, alignment int) int {
	if alignment <= 1 {
		return value
	}
	return value + (alignment-value%alignment)%alignment
}

// Ceil16 rounds a byte count up to the next 16-byte boundary, the granularity GPU
// constant buffers are allocated in.
func Ceil16(size int) int {
	return ((size + 15) / 16) * 16
}
