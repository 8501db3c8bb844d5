// Package rkbloom finds exact substring occurrences with the Rabin-Karp
// rolling hash, and uses Bloom filters of document window hashes to skip
// scans for patterns that cannot occur.
//
// # Rolling hash
//
// A window of m bytes is hashed as a base-256 polynomial modulo the prime
// [Modulus]. Sliding the window one byte to the right costs a multiply, a
// subtraction and an addition, independent of m:
//
//	next = (hash*256 - leftmost*256^m + rightmost) mod Modulus
//
// The constant 256^m depends only on the window length. [Roller] binds it to
// one length so it is computed once and never mixed across lengths.
// [HashInit] and [HashNext] expose the same arithmetic as plain functions.
//
// # Matching
//
// [MatchAll] compares the pattern hash with every window hash and confirms
// each hit byte by byte, since distinct strings can share a hash. The
// expected cost is O(n + m); adversarial inputs with many collisions degrade
// it to O(n·m). [MatchNaive] is the brute-force reference.
//
// An empty pattern matches nowhere, and a pattern longer than the document
// has no matches. Neither is an error.
//
// # Document filters
//
// When many patterns of one length are searched in the same document,
// [BuildDocumentFilter] inserts all n-m+1 window hashes into a [Membership]
// set once. [MatchWithFilter] then probes the set with the pattern hash:
//
//   - definitely absent: no window has that hash, so the result is empty
//     and the document is not scanned;
//   - possibly present: the filter may be wrong and the hash may collide, so
//     the result comes from a full [MatchAll].
//
// The filter never produces false negatives, so both paths return the same
// offsets as [MatchAll]. The filter only decides whether the scan runs.
//
//	df := rkbloom.BuildDocumentFilter(doc, 8, nil)
//	for _, p := range patterns {
//		res := rkbloom.MatchWithFilter(p, doc, df)
//		...
//	}
//
// # Filters
//
// The default set is [Filter], a cache-line blocked Bloom filter: every value
// is mixed with xxh3, the upper half of the mix picks one 512-bit block and
// the lower half drives k probes into distinct prime-sized partitions of
// that block. [AtomicFilter] has the same layout with atomic words and backs
// [BuildDocumentFilterParallel]. Any other implementation of [Membership]
// can be supplied through [Options].
//
// A built [DocumentFilter] can be persisted with
// [DocumentFilter.MarshalBinary]. The encoding records the window length and
// its power constant, so a decoded filter cannot be probed with hashes of a
// different length.
package rkbloom
