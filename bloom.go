package rkbloom

import (
	"math/bits"
	"sync/atomic"
	"unsafe"
)

const cacheLineSize = 64

// layout is the block geometry shared by [Filter] and [AtomicFilter]. All k
// probes of a value land in one 512-bit block, and probe i falls in the
// i-th partition of that block at intraHash mod size[i].
type layout struct {
	numBlocks uint64
	k         uint32
	sizes     []uint32 // partition sizes, summing to BlockBits
	offsets   []uint32 // first bit of each partition
}

func newLayout(numBlocks uint64, k uint32) layout {
	numBlocks = max(numBlocks, 1)
	sizes, ok := primePartitions[k]
	if !ok {
		k = 7
		sizes = primePartitions[k]
	}
	return layout{
		numBlocks: numBlocks,
		k:         k,
		sizes:     sizes,
		offsets:   partitionOffsets(sizes),
	}
}

// probe returns the word index and bit mask for the i-th probe.
func (l *layout) probe(blockIdx uint64, intraHash uint32, i uint32) (uint64, uint64) {
	bit := l.offsets[i] + intraHash%l.sizes[i]
	return blockIdx*BlockWords + uint64(bit/64), 1 << (bit % 64)
}

// Cap returns the size of the filter in bits.
func (l *layout) Cap() uint64 { return l.numBlocks * BlockBits }

// K returns the number of probes per value.
func (l *layout) K() uint32 { return l.k }

// NumBlocks returns the number of 512-bit blocks.
func (l *layout) NumBlocks() uint64 { return l.numBlocks }

// alignedWords allocates n 8-byte words starting on a cache-line boundary.
// The raw slice must be kept reachable for as long as the words are used.
func alignedWords[T uint64 | atomic.Uint64](n int) (raw []byte, words []T) {
	raw = make([]byte, n*8+cacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := (cacheLineSize - int(addr%cacheLineSize)) % cacheLineSize
	return raw, unsafe.Slice((*T)(unsafe.Pointer(&raw[off])), n)
}

// Filter is a cache-line blocked Bloom filter over uint64 values. It is the
// default [Membership] for document filters. A Filter is not safe for
// concurrent Insert; concurrent Query calls are fine once inserts are done.
type Filter struct {
	layout
	raw   []byte
	words []uint64
	count uint64
}

// NewFilter returns a Filter sized for expectedItems values at the target
// false-positive rate.
func NewFilter(expectedItems uint64, fpRate float64) *Filter {
	p := OptimalParams(expectedItems, fpRate)
	return NewFilterWithParams(p.NumBlocks, p.K)
}

// NewFilterWithParams returns a Filter of numBlocks blocks using k probes.
// Zero blocks is raised to one, and an unsupported k is replaced by 7.
func NewFilterWithParams(numBlocks uint64, k uint32) *Filter {
	l := newLayout(numBlocks, k)
	raw, words := alignedWords[uint64](int(l.numBlocks * BlockWords))
	return &Filter{layout: l, raw: raw, words: words}
}

// Insert adds v to the filter.
func (f *Filter) Insert(v uint64) {
	blockIdx, intraHash := locate(v, f.numBlocks)
	for i := range f.k {
		w, mask := f.probe(blockIdx, intraHash, i)
		f.words[w] |= mask
	}
	f.count++
}

// Query reports whether v may have been inserted. False is definite.
func (f *Filter) Query(v uint64) bool {
	blockIdx, intraHash := locate(v, f.numBlocks)
	for i := range f.k {
		w, mask := f.probe(blockIdx, intraHash, i)
		if f.words[w]&mask == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of Insert calls, duplicates included.
func (f *Filter) Count() uint64 { return f.count }

// EstimatedFillRatio returns the fraction of bits that are set.
func (f *Filter) EstimatedFillRatio() float64 {
	var set int
	for _, w := range f.words {
		set += bits.OnesCount64(w)
	}
	return float64(set) / float64(f.Cap())
}

// EstimatedFalsePositiveRate estimates the false-positive rate from the
// number of values inserted.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.numBlocks, f.k, f.count)
}

// AtomicFilter is a [Filter] whose Insert and Query may run concurrently.
// Bits are set with atomic OR, so no locks are taken.
type AtomicFilter struct {
	layout
	raw   []byte
	words []atomic.Uint64
	count atomic.Uint64
}

// NewAtomicFilter returns an AtomicFilter sized for expectedItems values at
// the target false-positive rate.
func NewAtomicFilter(expectedItems uint64, fpRate float64) *AtomicFilter {
	p := OptimalParams(expectedItems, fpRate)
	return NewAtomicFilterWithParams(p.NumBlocks, p.K)
}

// NewAtomicFilterWithParams is the concurrent counterpart of
// [NewFilterWithParams].
func NewAtomicFilterWithParams(numBlocks uint64, k uint32) *AtomicFilter {
	l := newLayout(numBlocks, k)
	raw, words := alignedWords[atomic.Uint64](int(l.numBlocks * BlockWords))
	return &AtomicFilter{layout: l, raw: raw, words: words}
}

// Insert adds v to the filter.
func (f *AtomicFilter) Insert(v uint64) {
	blockIdx, intraHash := locate(v, f.numBlocks)
	for i := range f.k {
		w, mask := f.probe(blockIdx, intraHash, i)
		f.words[w].Or(mask)
	}
	f.count.Add(1)
}

// Query reports whether v may have been inserted. False is definite for
// every Insert that returned before Query was called.
func (f *AtomicFilter) Query(v uint64) bool {
	blockIdx, intraHash := locate(v, f.numBlocks)
	for i := range f.k {
		w, mask := f.probe(blockIdx, intraHash, i)
		if f.words[w].Load()&mask == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of Insert calls, duplicates included.
func (f *AtomicFilter) Count() uint64 { return f.count.Load() }

// EstimatedFillRatio returns the fraction of bits that are set.
func (f *AtomicFilter) EstimatedFillRatio() float64 {
	var set int
	for i := range f.words {
		set += bits.OnesCount64(f.words[i].Load())
	}
	return float64(set) / float64(f.Cap())
}

// EstimatedFalsePositiveRate estimates the false-positive rate from the
// number of values inserted.
func (f *AtomicFilter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.numBlocks, f.k, f.count.Load())
}

// Freeze copies the filter into a plain [Filter]. It must not race with
// Insert.
func (f *AtomicFilter) Freeze() *Filter {
	out := NewFilterWithParams(f.numBlocks, f.k)
	for i := range f.words {
		out.words[i] = f.words[i].Load()
	}
	out.count = f.count.Load()
	return out
}
