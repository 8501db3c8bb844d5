package rkbloom

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// mixValue spreads a value over all 64 bits with xxh3. Rolling hashes are
// below 2^30, so using them directly would leave the block index bits empty.
func mixValue(v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return xxh3.Hash(buf[:])
}

// locate maps a value to its block and the 32-bit hash that drives the
// probes inside that block.
func locate(v uint64, numBlocks uint64) (blockIdx uint64, intraHash uint32) {
	h := mixValue(v)
	// Upper half picks the block, lower half picks bits within it.
	return (h >> 32) % numBlocks, uint32(h)
}
