package rkbloom

const (
	// Modulus is the prime all rolling hashes are reduced by. It is below
	// 2^30, so the product of two reduced values fits in a uint64.
	Modulus uint64 = 961748941

	// Base is the radix of the rolling hash polynomial (one byte per digit).
	Base uint64 = 256
)

// The operations below expect operands already reduced into [0, Modulus)
// and always return reduced values.

// ModAdd returns (a + b) mod Modulus.
func ModAdd(a, b uint64) uint64 {
	return (a + b) % Modulus
}

// ModSub returns (a - b) mod Modulus. When a < b the result wraps through
// the modulus instead of underflowing.
func ModSub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + Modulus - b
}

// ModMul returns (a * b) mod Modulus.
func ModMul(a, b uint64) uint64 {
	return (a * b) % Modulus
}
