package rkbloom

import "bytes"

// Result holds the offsets at which a pattern occurs in a document.
type Result struct {
	// Count is the number of occurrences, always len(Offsets).
	Count int
	// Offsets are the 0-based start positions of each occurrence, strictly
	// increasing. Overlapping occurrences are all reported.
	Offsets []int
}

// First returns the offset of the first occurrence, or -1 if there is none.
func (r Result) First() int {
	if len(r.Offsets) == 0 {
		return -1
	}
	return r.Offsets[0]
}

func (r *Result) add(offset int) {
	r.Offsets = append(r.Offsets, offset)
	r.Count++
}

// Equal reports whether the first m bytes of x and y are identical. It is
// false when either slice is shorter than m.
func Equal(x, y []byte, m int) bool {
	if m < 0 || len(x) < m || len(y) < m {
		return false
	}
	return bytes.Equal(x[:m], y[:m])
}

// MatchAll returns every occurrence of pattern in doc using the Rabin-Karp
// algorithm: each window hash is compared with the pattern hash, and only a
// hash hit is confirmed byte by byte.
//
// An empty pattern, or one longer than doc, has no occurrences.
func MatchAll(pattern, doc []byte) Result {
	var res Result
	m, n := len(pattern), len(doc)
	if m == 0 || m > n {
		return res
	}

	// pow depends only on m, so the pattern's value serves every window.
	target, pow := HashInit(pattern)

	var hash uint64
	for i := 0; i <= n-m; i++ {
		if i == 0 {
			hash, _ = HashInit(doc[:m])
		} else {
			hash = HashNext(hash, pow, doc[i-1], doc[i+m-1])
		}
		if hash == target && Equal(pattern, doc[i:], m) {
			res.add(i)
		}
	}
	return res
}

// MatchNaive returns every occurrence of pattern in doc by comparing the
// pattern against each offset directly. It follows the same conventions as
// [MatchAll] and serves as its reference.
func MatchNaive(pattern, doc []byte) Result {
	var res Result
	m, n := len(pattern), len(doc)
	if m == 0 || m > n {
		return res
	}
	for i := 0; i <= n-m; i++ {
		j := 0
		for j < m && doc[i+j] == pattern[j] {
			j++
		}
		if j == m {
			res.add(i)
		}
	}
	return res
}
