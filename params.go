package rkbloom

import "math"

const (
	// BlockBits is the number of bits per filter block (one cache line).
	BlockBits = 512
	// BlockWords is the number of uint64 words per block.
	BlockWords = BlockBits / 64

	ln2        = 0.6931471805599453
	ln2Squared = 0.4804530139182014

	// DefaultFPRate is the target false-positive rate used when none is given.
	DefaultFPRate = 0.01

	minK = 3
	maxK = 14
)

// primePartitions lists, for each supported k, k distinct partition sizes
// summing to BlockBits. Every probe of a value falls in its own partition.
// For odd k one size has to be even, since an odd count of odd numbers cannot
// sum to 512.
var primePartitions = map[uint32][]uint32{
	3:  {167, 173, 172},
	4:  {109, 127, 137, 139},
	5:  {97, 101, 103, 109, 102},
	6:  {61, 79, 83, 89, 97, 103},
	7:  {61, 67, 71, 79, 83, 89, 62},
	8:  {37, 47, 53, 61, 67, 71, 79, 97},
	9:  {41, 43, 47, 53, 59, 67, 71, 73, 58},
	10: {31, 37, 41, 43, 47, 53, 59, 61, 67, 73},
	11: {29, 31, 37, 41, 43, 44, 47, 53, 59, 61, 67},
	12: {17, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 71},
	13: {17, 19, 23, 29, 31, 37, 41, 43, 47, 52, 53, 59, 61},
	14: {11, 13, 17, 19, 23, 29, 31, 37, 41, 47, 53, 59, 61, 71},
}

// Params describes the shape of a blocked Bloom filter.
type Params struct {
	NumBlocks   uint64  // number of 512-bit blocks
	K           uint32  // probes per value
	BitsPerItem float64 // ideal bits per value before block rounding
}

// OptimalParams sizes a filter for expectedItems values at the target
// false-positive rate. A zero item count is sized as one item, and fpRate is
// clamped into (0, 1).
func OptimalParams(expectedItems uint64, fpRate float64) Params {
	expectedItems = max(expectedItems, 1)
	switch {
	case fpRate <= 0:
		fpRate = 0.0001
	case fpRate >= 1:
		fpRate = 0.99
	}

	bitsPerItem := -math.Log(fpRate) / ln2Squared
	numBlocks := uint64(math.Ceil(float64(expectedItems) * bitsPerItem / BlockBits))

	// Choose k from the bits actually available after rounding up to blocks.
	actual := float64(numBlocks*BlockBits) / float64(expectedItems)
	k := uint32(math.Round(actual * ln2))
	k = min(max(k, minK), maxK)

	return Params{NumBlocks: numBlocks, K: k, BitsPerItem: bitsPerItem}
}

// partitionOffsets returns the starting bit of each partition.
func partitionOffsets(sizes []uint32) []uint32 {
	offsets := make([]uint32, len(sizes))
	var next uint32
	for i, p := range sizes {
		offsets[i] = next
		next += p
	}
	return offsets
}

// EstimateFalsePositiveRate returns (1 - e^(-kn/m))^k for a filter of
// numBlocks blocks holding items values.
func EstimateFalsePositiveRate(numBlocks uint64, k uint32, items uint64) float64 {
	m := float64(numBlocks * BlockBits)
	if m == 0 || items == 0 {
		return 0
	}
	kf := float64(k)
	return math.Pow(1-math.Exp(-kf*float64(items)/m), kf)
}
