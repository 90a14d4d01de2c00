package fxtoken

import "unicode/utf16"

// Seed derives the pseudo-random generator seed for a token.
//
// It computes seed = seed*31 + c over the UTF-16 code units of token on a
// signed 32-bit accumulator, wrapping on every step, and returns the
// absolute value. Distinct tokens may collide.
func Seed(token string) uint32 {
	var seed int32
	for _, c := range utf16.Encode([]rune(token)) {
		seed = (seed << 5) - seed + int32(c)
	}
	if seed < 0 {
		return uint32(-int64(seed))
	}
	return uint32(seed)
}
