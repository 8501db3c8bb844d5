package rkbloom

import "iter"

// HashInit computes the rolling hash of window, treating it as a base-256
// polynomial with the first byte as the most significant digit:
//
//	hash = Σ window[j] * 256^(m-1-j) mod Modulus
//
// It also returns pow = 256^m mod Modulus, the constant [HashNext] needs to
// slide a window of the same length. An empty window hashes to 0 with pow 1.
func HashInit(window []byte) (hash, pow uint64) {
	pow = 1
	for _, c := range window {
		hash = ModAdd(ModMul(hash, Base), uint64(c))
		pow = ModMul(pow, Base)
	}
	return hash, pow
}

// HashNext advances the hash of W[i:i+m] to the hash of W[i+1:i+m+1] in
// constant time. leftmost is W[i], the byte leaving the window, rightmost is
// W[i+m], the byte entering it, and pow must be 256^m mod Modulus for the
// same m, as returned by [HashInit] or [Roller.Pow].
func HashNext(hash, pow uint64, leftmost, rightmost byte) uint64 {
	hash = ModMul(hash, Base)
	// The leftmost byte was shifted one digit past the window; remove it.
	hash = ModSub(hash, ModMul(uint64(leftmost), pow))
	return ModAdd(hash, uint64(rightmost))
}

// A Roller computes rolling hashes for windows of one fixed length. It holds
// the power constant for that length so it cannot be mixed with windows of
// another length. A Roller is immutable and safe for concurrent use.
type Roller struct {
	m   int    // window length
	pow uint64 // 256^m mod Modulus
}

// NewRoller returns a Roller for windows of m bytes. A negative m is treated
// as zero.
func NewRoller(m int) *Roller {
	m = max(m, 0)
	pow := uint64(1)
	for range m {
		pow = ModMul(pow, Base)
	}
	return &Roller{m: m, pow: pow}
}

// Len returns the window length.
func (r *Roller) Len() int { return r.m }

// Pow returns 256^m mod Modulus for the window length m.
func (r *Roller) Pow() uint64 { return r.pow }

// Init returns the hash of the first Len bytes of window.
// It panics if window is shorter than Len.
func (r *Roller) Init(window []byte) uint64 {
	hash, _ := HashInit(window[:r.m])
	return hash
}

// Roll slides a window hash one byte: out leaves on the left and in enters
// on the right.
func (r *Roller) Roll(hash uint64, out, in byte) uint64 {
	return HashNext(hash, r.pow, out, in)
}

// All returns an iterator over (offset, hash) for every window of doc, in
// increasing offset order. The first window is hashed from scratch and every
// following one is derived with [HashNext]. It yields nothing when the window
// length is zero or exceeds len(doc).
func (r *Roller) All(doc []byte) iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		m := r.m
		if m == 0 || m > len(doc) {
			return
		}
		hash := r.Init(doc)
		if !yield(0, hash) {
			return
		}
		for i := 1; i <= len(doc)-m; i++ {
			hash = HashNext(hash, r.pow, doc[i-1], doc[i+m-1])
			if !yield(i, hash) {
				return
			}
		}
	}
}

// Hashes returns the hash of every window of doc, indexed by offset. It
// returns nil when there are no windows.
func (r *Roller) Hashes(doc []byte) []uint64 {
	if r.m == 0 || r.m > len(doc) {
		return nil
	}
	out := make([]uint64, 0, len(doc)-r.m+1)
	for _, hash := range r.All(doc) {
		out = append(out, hash)
	}
	return out
}

// WindowHashes returns the rolling hash of every m-byte window of doc.
func WindowHashes(doc []byte, m int) []uint64 {
	return NewRoller(m).Hashes(doc)
}
