// Command analysis measures how a Rabin-Karp document filter screens
// queries: it builds a filter over a random document, probes it with random
// patterns and compares the observed false-positive rate with the estimate.
//
// Usage:
//
//	go run . [-config analysis.yaml] [-n 1048576] [-m 12] [-queries 100000]
//
// Flags given on the command line override values from the config file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		docLen     = flag.Int("n", 0, "document length in bytes")
		window     = flag.Int("m", 0, "pattern and window length")
		queries    = flag.Int("queries", 0, "number of random patterns to probe")
		fpRate     = flag.Float64("fp", 0, "target false-positive rate")
		alphabet   = flag.String("alphabet", "", "symbols used for the document and patterns")
		seed       = flag.Uint64("seed", 0, "random seed")
		workers    = flag.Int("workers", 0, "filter build goroutines (0 = GOMAXPROCS)")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
		logFormat  = flag.String("log-format", "", "text or json")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "analysis: %v\n", err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.DocLen = *docLen
		case "m":
			cfg.Window = *window
		case "queries":
			cfg.Queries = *queries
		case "fp":
			cfg.FPRate = *fpRate
		case "alphabet":
			cfg.Alphabet = *alphabet
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		}
	})

	setupLogger(os.Stderr, cfg.Logging)
	slog.Info("starting analysis", "n", cfg.DocLen, "m", cfg.Window, "queries", cfg.Queries, "fp", cfg.FPRate)

	rep, err := Run(cfg, slog.Default())
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analysis complete",
		"windows", rep.Windows,
		"present", rep.Present,
		"skipped", rep.Skipped,
		"false_positives", rep.FalsePositives,
		"observed_fp", rep.ObservedFPRate,
		"estimated_fp", rep.EstimatedFPRate,
		"fill", rep.FillRatio,
		"query_time", rep.QueryTime,
	)
}
