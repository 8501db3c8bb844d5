package rkbloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Options configure how a [DocumentFilter] is built. A nil *Options is ready
// for use and provides the defaults described on each field.
type Options struct {
	// Capacity is the number of values the set is sized for. Zero sizes it
	// for one value per document window.
	Capacity uint64

	// FPRate is the target false-positive rate of the default set. Zero
	// means DefaultFPRate.
	FPRate float64

	// NewSet creates the membership set. If nil, a [Filter] is used, or an
	// [AtomicFilter] for parallel builds. Sets passed to
	// [BuildDocumentFilterParallel] must accept concurrent inserts.
	NewSet SetFunc
}

func (o *Options) fpRate() float64 {
	if o == nil || o.FPRate == 0 {
		return DefaultFPRate
	}
	return o.FPRate
}

func (o *Options) capacity(windows uint64) uint64 {
	if o == nil || o.Capacity == 0 {
		return windows
	}
	return o.Capacity
}

func (o *Options) customSet() SetFunc {
	if o == nil {
		return nil
	}
	return o.NewSet
}

// A DocumentFilter holds the rolling hash of every m-byte window of one
// document. It answers, without scanning, whether a pattern of length m can
// possibly occur in that document. It must be rebuilt if the document
// changes.
//
// A DocumentFilter is read-only once built and safe for concurrent queries.
type DocumentFilter struct {
	roller  *Roller
	windows uint64
	set     Membership
}

func windowCount(n, m int) uint64 {
	if m == 0 || m > n {
		return 0
	}
	return uint64(n - m + 1)
}

// BuildDocumentFilter inserts the hash of every m-byte window of doc into a
// new membership set. The first window is hashed from scratch and each later
// one is rolled forward in constant time.
func BuildDocumentFilter(doc []byte, m int, opts *Options) *DocumentFilter {
	r := NewRoller(m)
	windows := windowCount(len(doc), r.Len())

	newSet := opts.customSet()
	if newSet == nil {
		newSet = FilterSet(opts.fpRate())
	}
	set := newSet(opts.capacity(windows))
	for _, hash := range r.All(doc) {
		set.Insert(hash)
	}
	return &DocumentFilter{roller: r, windows: windows, set: set}
}

// minChunk is the smallest number of windows worth handing to a worker.
const minChunk = 4096

// BuildDocumentFilterParallel is like [BuildDocumentFilter] but splits the
// windows of doc into contiguous chunks hashed by up to workers goroutines.
// Each chunk seeds its first window from scratch and rolls the rest. If
// workers ≤ 0, GOMAXPROCS is used. It returns once every insert is done.
//
// With the default set the result answers queries exactly like the
// sequential build.
func BuildDocumentFilterParallel(doc []byte, m int, workers int, opts *Options) *DocumentFilter {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r := NewRoller(m)
	windows := windowCount(len(doc), r.Len())
	workers = min(workers, int(windows/minChunk))
	if workers <= 1 {
		return BuildDocumentFilter(doc, m, opts)
	}

	newSet := opts.customSet()
	if newSet == nil {
		newSet = AtomicFilterSet(opts.fpRate())
	}
	set := newSet(opts.capacity(windows))

	chunk := (int(windows) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < int(windows); lo += chunk {
		hi := min(lo+chunk, int(windows))
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash := r.Init(doc[lo:])
			set.Insert(hash)
			for i := lo + 1; i < hi; i++ {
				hash = r.Roll(hash, doc[i-1], doc[i+m-1])
				set.Insert(hash)
			}
		}()
	}
	wg.Wait()

	if af, ok := set.(*AtomicFilter); ok && opts.customSet() == nil {
		set = af.Freeze()
	}
	return &DocumentFilter{roller: r, windows: windows, set: set}
}

// Len returns the window length the filter was built for.
func (df *DocumentFilter) Len() int { return df.roller.Len() }

// Windows returns the number of window hashes inserted.
func (df *DocumentFilter) Windows() uint64 { return df.windows }

// Set returns the underlying membership set.
func (df *DocumentFilter) Set() Membership { return df.set }

// MayContain reports whether pattern may occur in the filtered document.
// False is definite. A pattern whose length differs from Len cannot be ruled
// out and reports true, except an empty pattern, which never occurs.
func (df *DocumentFilter) MayContain(pattern []byte) bool {
	if len(pattern) == 0 {
		return false
	}
	if len(pattern) != df.Len() {
		return true
	}
	hash, _ := HashInit(pattern)
	return df.set.Query(hash)
}

// Match is shorthand for MatchWithFilter(pattern, doc, df).
func (df *DocumentFilter) Match(pattern, doc []byte) Result {
	return MatchWithFilter(pattern, doc, df)
}

// MatchWithFilter returns every occurrence of pattern in doc, using df to
// skip the scan when the pattern's hash is definitely absent from doc. When
// the filter reports a possible hit, the result comes from a full
// [MatchAll], since neither the filter nor the hash can certify a match.
//
// df must have been built from doc. A nil df, or one built for a different
// window length, cannot rule anything out and always leads to a scan.
func MatchWithFilter(pattern, doc []byte, df *DocumentFilter) Result {
	m := len(pattern)
	if m == 0 || m > len(doc) {
		return Result{}
	}
	if df != nil && !df.MayContain(pattern) {
		return Result{}
	}
	return MatchAll(pattern, doc)
}

// Stats describes a document filter.
type Stats struct {
	WindowLen int
	Windows   uint64

	// The fields below are zero unless the set is a Filter or AtomicFilter.
	CapBits         uint64
	K               uint32
	FillRatio       float64
	EstimatedFPRate float64
}

type filterStats interface {
	Cap() uint64
	K() uint32
	EstimatedFillRatio() float64
	EstimatedFalsePositiveRate() float64
}

// Stats returns size and occupancy figures for the filter.
func (df *DocumentFilter) Stats() Stats {
	st := Stats{WindowLen: df.Len(), Windows: df.windows}
	if fs, ok := df.set.(filterStats); ok {
		st.CapBits = fs.Cap()
		st.K = fs.K()
		st.FillRatio = fs.EstimatedFillRatio()
		st.EstimatedFPRate = fs.EstimatedFalsePositiveRate()
	}
	return st
}

const (
	docFilterMagic   = "RKDF"
	docFilterVersion = 1

	// magic(4) + version(1) + m(8) + pow(8) + windows(8)
	docFilterHeaderSize = 29

	maxSerializedWindowLen = 1 << 24
)

var (
	// ErrNotSerializable is returned when marshaling a document filter whose
	// set is not a Filter or AtomicFilter.
	ErrNotSerializable = errors.New("rkbloom: membership set is not serializable")

	// ErrSessionMismatch is returned when a serialized document filter's
	// power constant does not belong to its window length.
	ErrSessionMismatch = errors.New("rkbloom: power constant does not match window length")
)

// MarshalBinary encodes the document filter:
//
//	magic "RKDF" | version (1) | m (8) | pow (8) | windows (8) | filter
//
// where filter is the output of [Filter.MarshalBinary].
func (df *DocumentFilter) MarshalBinary() ([]byte, error) {
	var f *Filter
	switch s := df.set.(type) {
	case *Filter:
		f = s
	case *AtomicFilter:
		f = s.Freeze()
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotSerializable, df.set)
	}
	body, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, docFilterHeaderSize, docFilterHeaderSize+len(body))
	copy(buf, docFilterMagic)
	buf[4] = docFilterVersion
	binary.LittleEndian.PutUint64(buf[5:13], uint64(df.Len()))
	binary.LittleEndian.PutUint64(buf[13:21], df.roller.Pow())
	binary.LittleEndian.PutUint64(buf[21:29], df.windows)
	return append(buf, body...), nil
}

// UnmarshalDocumentFilter decodes a document filter written by
// [DocumentFilter.MarshalBinary].
func UnmarshalDocumentFilter(data []byte) (*DocumentFilter, error) {
	if len(data) < docFilterHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidData, len(data), docFilterHeaderSize)
	}
	if string(data[:4]) != docFilterMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidData, data[:4])
	}
	if v := data[4]; v != docFilterVersion {
		return nil, fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedVersion, v, docFilterVersion)
	}

	m := binary.LittleEndian.Uint64(data[5:13])
	pow := binary.LittleEndian.Uint64(data[13:21])
	windows := binary.LittleEndian.Uint64(data[21:29])
	if m > maxSerializedWindowLen {
		return nil, fmt.Errorf("%w: window length %d", ErrInvalidData, m)
	}
	r := NewRoller(int(m))
	if r.Pow() != pow {
		return nil, fmt.Errorf("%w: m=%d pow=%d", ErrSessionMismatch, m, pow)
	}

	f, err := UnmarshalFilter(data[docFilterHeaderSize:])
	if err != nil {
		return nil, err
	}
	if f.Count() != windows {
		return nil, fmt.Errorf("%w: filter holds %d values for %d windows", ErrInvalidData, f.Count(), windows)
	}
	return &DocumentFilter{roller: r, windows: windows, set: f}, nil
}
