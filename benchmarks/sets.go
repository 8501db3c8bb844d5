// Package benchmarks compares document filters backed by different Bloom
// filter libraries. Each adapter wraps one library as an rkbloom.Membership.
package benchmarks

import (
	"encoding/binary"

	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/rkbloom"
)

// key encodes a rolling hash as the byte key the byte-oriented filters want.
func key(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), v)
}

// BitsAndBlooms adapts a bits-and-blooms filter. It is not safe for
// concurrent inserts.
type BitsAndBlooms struct{ f *bab.BloomFilter }

// NewBitsAndBlooms returns a SetFunc for bits-and-blooms filters.
func NewBitsAndBlooms(fpRate float64) rkbloom.SetFunc {
	return func(capacity uint64) rkbloom.Membership {
		return BitsAndBlooms{bab.NewWithEstimates(uint(max(capacity, 1)), fpRate)}
	}
}

func (s BitsAndBlooms) Insert(v uint64) { s.f.Add(key(v)) }
func (s BitsAndBlooms) Query(v uint64) bool { return s.f.Test(key(v)) }

// AtomicBloom adapts an atomic-bloom filter, which accepts concurrent
// inserts and can back parallel builds.
type AtomicBloom struct{ f *atomicbloom.BloomFilter }

// NewAtomicBloom returns a SetFunc for atomic-bloom filters.
func NewAtomicBloom(fpRate float64) rkbloom.SetFunc {
	return func(capacity uint64) rkbloom.Membership {
		return AtomicBloom{atomicbloom.NewWithEstimates(uint(max(capacity, 1)), fpRate)}
	}
}

func (s AtomicBloom) Insert(v uint64) { s.f.Add(key(v)) }
func (s AtomicBloom) Query(v uint64) bool { return s.f.Test(key(v)) }

// Blobloom adapts a blobloom filter. Blobloom consumes pre-hashed keys and
// needs all 64 bits to be well mixed, so rolling hashes go through xxhash
// first.
type Blobloom struct{ f *blobloom.Filter }

// NewBlobloom returns a SetFunc for blobloom filters.
func NewBlobloom(fpRate float64) rkbloom.SetFunc {
	return func(capacity uint64) rkbloom.Membership {
		return Blobloom{blobloom.NewOptimized(blobloom.Config{
			Capacity: max(capacity, 1),
			FPRate:   fpRate,
		})}
	}
}

func (s Blobloom) Insert(v uint64) { s.f.Add(xxhash.Sum64(key(v))) }
func (s Blobloom) Query(v uint64) bool { return s.f.Has(xxhash.Sum64(key(v))) }
