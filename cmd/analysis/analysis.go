package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jcalabro/rkbloom"
)

// Report summarizes how well a document filter screened a batch of queries.
type Report struct {
	Windows         uint64
	Queries         int
	Present         int // queries that occur in the document
	Skipped         int // queries the filter ruled out, so no scan ran
	FalsePositives  int // absent queries the filter let through
	ObservedFPRate  float64
	EstimatedFPRate float64
	FillRatio       float64
	BuildTime       time.Duration
	QueryTime       time.Duration
}

// Run generates a random document, builds its filter and probes it with
// random patterns of the window length. A query the filter rules out while
// MatchAll finds it is reported as an error.
func Run(cfg Config, log *slog.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	doc := randomText(r, cfg.DocLen, cfg.Alphabet)
	opts := &rkbloom.Options{FPRate: cfg.FPRate}

	start := time.Now()
	var df *rkbloom.DocumentFilter
	if cfg.Workers == 1 {
		df = rkbloom.BuildDocumentFilter(doc, cfg.Window, opts)
	} else {
		df = rkbloom.BuildDocumentFilterParallel(doc, cfg.Window, cfg.Workers, opts)
	}
	rep := Report{Windows: df.Windows(), Queries: cfg.Queries, BuildTime: time.Since(start)}
	st := df.Stats()
	rep.EstimatedFPRate, rep.FillRatio = st.EstimatedFPRate, st.FillRatio
	log.Info("built filter", "windows", st.Windows, "bits", st.CapBits, "k", st.K, "elapsed", rep.BuildTime)

	start = time.Now()
	for range cfg.Queries {
		p := randomText(r, cfg.Window, cfg.Alphabet)
		res := rkbloom.MatchAll(p, doc)
		may := df.MayContain(p)
		switch {
		case res.Count > 0 && !may:
			return rep, fmt.Errorf("filter ruled out %q, which occurs at %d", p, res.First())
		case res.Count > 0:
			rep.Present++
		case may:
			rep.FalsePositives++
			log.Debug("false positive", "pattern", string(p))
		default:
			rep.Skipped++
		}
	}
	rep.QueryTime = time.Since(start)

	if absent := rep.Queries - rep.Present; absent > 0 {
		rep.ObservedFPRate = float64(rep.FalsePositives) / float64(absent)
	}
	return rep, nil
}

func randomText(r *rand.Rand, n int, alphabet string) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[r.IntN(len(alphabet))]
	}
	return out
}
