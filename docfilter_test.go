package rkbloom

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// exactSet is a Membership with no false positives.
type exactSet struct {
	mu   sync.Mutex
	vals map[uint64]bool
}

func newExactSet(uint64) Membership { return &exactSet{vals: make(map[uint64]bool)} }

func (s *exactSet) Insert(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[v] = true
}

func (s *exactSet) Query(v uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals[v]
}

// constSet answers every query the same way and counts them.
type constSet struct {
	answer  bool
	queries int
}

func (s *constSet) Insert(uint64) {}

func (s *constSet) Query(uint64) bool {
	s.queries++
	return s.answer
}

func TestMatchWithFilterLiteral(t *testing.T) {
	doc := []byte("xabcxxabcx")
	df := BuildDocumentFilter(doc, 3, nil)

	got := MatchWithFilter([]byte("abc"), doc, df)
	if diff := cmp.Diff(Result{Count: 2, Offsets: []int{1, 6}}, got); diff != "" {
		t.Errorf("MatchWithFilter (-want +got):\n%s", diff)
	}
	if got := df.Match([]byte("abc"), doc); got.Count != 2 {
		t.Errorf("Match count = %d, want 2", got.Count)
	}
}

func TestMatchWithFilterAgreesWithMatchAll(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 100 {
		doc := randomBytes(r, 1+r.IntN(400), "abcd")
		m := 1 + r.IntN(6)
		df := BuildDocumentFilter(doc, m, nil)
		for range 20 {
			var pattern []byte
			if len(doc) >= m && r.IntN(2) == 0 {
				i := r.IntN(len(doc) - m + 1)
				pattern = doc[i : i+m]
			} else {
				pattern = randomBytes(r, m, "abcde")
			}
			want := MatchAll(pattern, doc)
			got := MatchWithFilter(pattern, doc, df)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("pattern %q in %q (-want +got):\n%s", pattern, doc, diff)
			}
		}
	}
}

func TestMatchWithFilterNoFalseNegatives(t *testing.T) {
	doc := randomBytes(rand.New(rand.NewPCG(9, 9)), 5000, "acgt")
	const m = 12
	df := BuildDocumentFilter(doc, m, &Options{FPRate: 0.2})
	for i := 0; i+m <= len(doc); i += 37 {
		pattern := doc[i : i+m]
		if !df.MayContain(pattern) {
			t.Fatalf("window at %d reported absent", i)
		}
		if got := MatchWithFilter(pattern, doc, df); !slices.Contains(got.Offsets, i) {
			t.Fatalf("window at %d missing from %v", i, got.Offsets)
		}
	}
}

func TestMatchWithFilterDefiniteAbsence(t *testing.T) {
	doc := []byte("abcabcabc")
	df := BuildDocumentFilter(doc, 3, &Options{NewSet: newExactSet})

	if got := MatchWithFilter([]byte("xyz"), doc, df); got.Count != 0 || got.Offsets != nil {
		t.Errorf("absent pattern: got %+v, want empty", got)
	}
	if df.MayContain([]byte("xyz")) {
		t.Error("exact set reports xyz present")
	}

	// The filter is trusted on absence; a set that rejects everything
	// suppresses the scan even though the pattern occurs.
	never := &constSet{answer: false}
	df = BuildDocumentFilter(doc, 3, &Options{NewSet: func(uint64) Membership { return never }})
	if got := MatchWithFilter([]byte("abc"), doc, df); got.Count != 0 {
		t.Errorf("rejecting set: got %+v, want empty", got)
	}
	if never.queries != 1 {
		t.Errorf("queries = %d, want 1", never.queries)
	}
}

func TestMatchWithFilterPossiblePresenceScans(t *testing.T) {
	doc := []byte("abcabcabc")
	always := &constSet{answer: true}
	df := BuildDocumentFilter(doc, 3, &Options{NewSet: func(uint64) Membership { return always }})

	if got := MatchWithFilter([]byte("bca"), doc, df); !slices.Equal(got.Offsets, []int{1, 4}) {
		t.Errorf("got %v, want [1 4]", got.Offsets)
	}
	// A false positive still yields the exact (empty) result.
	if got := MatchWithFilter([]byte("xyz"), doc, df); got.Count != 0 {
		t.Errorf("false positive: got %+v, want empty", got)
	}
}

func TestMatchWithFilterDegenerate(t *testing.T) {
	doc := []byte("hello")
	spy := &constSet{answer: true}
	df := BuildDocumentFilter(doc, 5, &Options{NewSet: func(uint64) Membership { return spy }})

	if got := MatchWithFilter(nil, doc, df); got.Count != 0 {
		t.Errorf("empty pattern: got %+v", got)
	}
	if got := MatchWithFilter([]byte("hello!"), doc, df); got.Count != 0 {
		t.Errorf("long pattern: got %+v", got)
	}
	if spy.queries != 0 {
		t.Errorf("degenerate patterns probed the set %d times", spy.queries)
	}
	if got := MatchWithFilter([]byte("hello"), doc, df); !slices.Equal(got.Offsets, []int{0}) {
		t.Errorf("whole document: got %v, want [0]", got.Offsets)
	}
	if df.MayContain(nil) {
		t.Error("MayContain(nil) = true")
	}
}

func TestMatchWithFilterLengthMismatch(t *testing.T) {
	doc := []byte("abcabcabc")
	df := BuildDocumentFilter(doc, 3, &Options{NewSet: newExactSet})

	// The filter knows nothing about 2-byte windows, so it must scan.
	if !df.MayContain([]byte("ca")) {
		t.Error("MayContain with other length = false")
	}
	if got := MatchWithFilter([]byte("ca"), doc, df); !slices.Equal(got.Offsets, []int{2, 5}) {
		t.Errorf("got %v, want [2 5]", got.Offsets)
	}
	if got := MatchWithFilter([]byte("ca"), doc, nil); !slices.Equal(got.Offsets, []int{2, 5}) {
		t.Errorf("nil filter: got %v, want [2 5]", got.Offsets)
	}
}

func TestBuildDocumentFilterCapacity(t *testing.T) {
	tests := []struct {
		doc  string
		m    int
		opts Options
		want uint64
	}{
		{"abcdef", 2, Options{}, 5},
		{"abcdef", 6, Options{}, 1},
		{"abc", 4, Options{}, 0},
		{"abc", 0, Options{}, 0},
		{"abcdef", 2, Options{Capacity: 1000}, 1000},
	}
	for _, tt := range tests {
		var got uint64
		opts := tt.opts
		opts.NewSet = func(c uint64) Membership {
			got = c
			return newExactSet(c)
		}
		df := BuildDocumentFilter([]byte(tt.doc), tt.m, &opts)
		if got != tt.want {
			t.Errorf("doc=%q m=%d: capacity %d, want %d", tt.doc, tt.m, got, tt.want)
		}
		if w := windowCount(len(tt.doc), tt.m); df.Windows() != w {
			t.Errorf("doc=%q m=%d: Windows() = %d, want %d", tt.doc, tt.m, df.Windows(), w)
		}
	}
}

func TestBuildDocumentFilterInsertsEveryWindow(t *testing.T) {
	doc := []byte("mississippi")
	df := BuildDocumentFilter(doc, 4, &Options{NewSet: newExactSet})
	set := df.Set().(*exactSet)
	for _, h := range WindowHashes(doc, 4) {
		if !set.vals[h] {
			t.Errorf("hash %d not inserted", h)
		}
	}
	// "issi" appears twice, so there is one fewer distinct hash.
	if len(set.vals) != 7 {
		t.Errorf("distinct hashes = %d, want 7", len(set.vals))
	}
}

func TestBuildDocumentFilterIdempotent(t *testing.T) {
	doc := randomBytes(rand.New(rand.NewPCG(4, 4)), 2000, "xyz")
	a := BuildDocumentFilter(doc, 6, nil)
	b := BuildDocumentFilter(doc, 6, nil)

	fa, fb := a.Set().(*Filter), b.Set().(*Filter)
	if !slices.Equal(fa.words, fb.words) {
		t.Fatal("two builds produced different bits")
	}
	r := rand.New(rand.NewPCG(4, 5))
	for range 1000 {
		p := randomBytes(r, 6, "xyzw")
		if a.MayContain(p) != b.MayContain(p) {
			t.Fatalf("builds disagree on %q", p)
		}
	}
}

func TestBuildDocumentFilterParallel(t *testing.T) {
	doc := randomBytes(rand.New(rand.NewPCG(8, 1)), 100_000, "abcdefgh")
	const m = 9

	seq := BuildDocumentFilter(doc, m, nil)
	for _, workers := range []int{0, 2, 3, 8} {
		par := BuildDocumentFilterParallel(doc, m, workers, nil)
		if par.Windows() != seq.Windows() || par.Len() != m {
			t.Fatalf("workers=%d: windows=%d len=%d", workers, par.Windows(), par.Len())
		}
		fs, fp := seq.Set().(*Filter), par.Set().(*Filter)
		if fs.Count() != fp.Count() {
			t.Errorf("workers=%d: count %d, want %d", workers, fp.Count(), fs.Count())
		}
		if !slices.Equal(fs.words, fp.words) {
			t.Errorf("workers=%d: bits differ from sequential build", workers)
		}
	}
}

func TestBuildDocumentFilterParallelCustomSet(t *testing.T) {
	doc := randomBytes(rand.New(rand.NewPCG(8, 2)), 50_000, "ab")
	const m = 16

	df := BuildDocumentFilterParallel(doc, m, 4, &Options{NewSet: newExactSet})
	set := df.Set().(*exactSet)
	for i, h := range WindowHashes(doc, m) {
		if !set.vals[h] {
			t.Fatalf("window %d not inserted", i)
		}
	}
}

func TestBuildDocumentFilterParallelSmall(t *testing.T) {
	doc := []byte("xabcxxabcx")
	df := BuildDocumentFilterParallel(doc, 3, 16, nil)
	if _, ok := df.Set().(*Filter); !ok {
		t.Errorf("small build set is %T, want *Filter", df.Set())
	}
	if got := MatchWithFilter([]byte("abc"), doc, df); !slices.Equal(got.Offsets, []int{1, 6}) {
		t.Errorf("got %v, want [1 6]", got.Offsets)
	}
}

func TestDocumentFilterStats(t *testing.T) {
	doc := randomBytes(rand.New(rand.NewPCG(2, 2)), 10_000, "abcdefghij")
	df := BuildDocumentFilter(doc, 5, &Options{FPRate: 0.01})

	st := df.Stats()
	if st.WindowLen != 5 || st.Windows != uint64(len(doc)-4) {
		t.Errorf("got WindowLen=%d Windows=%d", st.WindowLen, st.Windows)
	}
	if st.K == 0 || st.CapBits == 0 {
		t.Errorf("missing filter shape: %+v", st)
	}
	if st.FillRatio <= 0 || st.FillRatio >= 1 {
		t.Errorf("FillRatio = %f", st.FillRatio)
	}
	if st.EstimatedFPRate <= 0 || st.EstimatedFPRate > 0.02 {
		t.Errorf("EstimatedFPRate = %f", st.EstimatedFPRate)
	}

	custom := BuildDocumentFilter(doc, 5, &Options{NewSet: newExactSet}).Stats()
	if custom.K != 0 || custom.CapBits != 0 || custom.Windows != st.Windows {
		t.Errorf("custom set stats: %+v", custom)
	}
}
