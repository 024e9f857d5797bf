package util

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bit returns 1 when bit n of v is set, 0 otherwise.
func Bit[T constraints.Unsigned](v T, n uint) int {
	if v&(1<<n) != 0 {
		return 1
	}
	return 0
}
