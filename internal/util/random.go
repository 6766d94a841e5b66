package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Not suitable for anything security sensitive.
func GenerateRandomHex(length int) string {
	return randomFrom(nil, "0123456789abcdef", length)
}

// RandomDigits returns length decimal digits drawn from r, or from the global
// source when r is nil. The first digit is never zero.
func RandomDigits(r *rand.Rand, length int) string {
	if length <= 0 {
		return ""
	}
	return randomFrom(r, "123456789", 1) + randomFrom(r, "0123456789", length-1)
}

// Pick returns a random element of items drawn from r, or from the global
// source when r is nil. It returns the zero value for an empty slice.
func Pick[T any](r *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[intN(r, len(items))]
}

func randomFrom(r *rand.Rand, chars string, length int) string {
	if length <= 0 {
		return ""
	}
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		builder.WriteByte(chars[intN(r, len(chars))])
	}
	return builder.String()
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
