// Package power decides whether an integer is an exact power of an integer base.
package power

import "math/bits"

// Pow returns base^exp and false if the result does not fit in a uint64.
func Pow(base uint64, exp int) (uint64, bool) {
	result := uint64(1)
	for exp > 0 {
		if exp&1 == 1 {
			hi, lo := bits.Mul64(result, base)
			if hi != 0 {
				return 0, false
			}
			result = lo
		}
		exp >>= 1
		if exp > 0 {
			hi, lo := bits.Mul64(base, base)
			if hi != 0 {
				return 0, false
			}
			base = lo
		}
	}
	return result, true
}

// atMost reports whether base^exp <= n. Overflow counts as greater than n.
func atMost(base uint64, exp int, n uint64) bool {
	p, ok := Pow(base, exp)
	return ok && p <= n
}

// IsPerfectPower reports whether some non-negative integer r satisfies
// r^exponent == number.
func IsPerfectPower(number int64, exponent int) bool {
	r := Root(number, exponent)
	if r < 0 {
		return false
	}
	p, ok := Pow(uint64(r), exponent)
	return ok && p == uint64(number)
}

// Root returns the integer part of the exponent-th root of number, found by
// doubling an upper bound and then binary searching. It returns -1 for
// negative numbers and exponents below 1.
func Root(number int64, exponent int) int64 {
	if number < 0 || exponent < 1 {
		return -1
	}
	if number <= 1 || exponent == 1 {
		return number
	}

	n := uint64(number)
	low, high := uint64(1), uint64(2)

	// high ends as the first doubling with high^exponent > n.
	for atMost(high, exponent, n) {
		low = high
		high *= 2
	}

	for high-low > 1 {
		mid := low + (high-low)/2
		if atMost(mid, exponent, n) {
			low = mid
		} else {
			high = mid
		}
	}
	return int64(low)
}
