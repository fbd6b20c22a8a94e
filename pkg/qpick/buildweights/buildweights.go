// Package buildweights is the offline counterpart to the query-fingerprint
// pipeline: it scans a corpus of historical queries, tallies token document
// frequency, and turns those counts into the word→weight map that
// cmd/qpick-buildweights writes out (via pkg/qpick/fstweight) as the
// term-weight FST consumed by lexicon.WeightSource at query time.
package buildweights

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/cognicore/qpick/pkg/qpick/pmi"
)

// Analyzer accumulates token document-frequency counts across a query
// corpus.
type Analyzer struct {
	totalQueries int64
	tokenDF      map[string]int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{tokenDF: make(map[string]int64, 4096)}
}

// Process consumes one query's normalized tokens.
func (a *Analyzer) Process(tokens []string) {
	a.totalQueries++
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		a.tokenDF[tok]++
	}
}

// localCounts holds per-goroutine counts accumulated during ProcessBatch.
type localCounts struct {
	totalQueries int64
	tokenDF      map[string]int64
}

// ProcessBatch consumes many queries' tokens in parallel across
// GOMAXPROCS workers, then merges the partial counts.
func (a *Analyzer) ProcessBatch(queries [][]string) {
	nWorkers := runtime.GOMAXPROCS(0)
	if nWorkers > len(queries) {
		nWorkers = len(queries)
	}
	if nWorkers <= 1 {
		for _, tokens := range queries {
			a.Process(tokens)
		}
		return
	}

	locals := make([]*localCounts, nWorkers)
	var wg sync.WaitGroup
	chunkSize := (len(queries) + nWorkers - 1) / nWorkers

	for w := 0; w < nWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(queries) {
			end = len(queries)
		}
		if start >= end {
			break
		}
		lc := &localCounts{tokenDF: make(map[string]int64, 512)}
		locals[w] = lc
		wg.Add(1)
		go func(chunk [][]string, lc *localCounts) {
			defer wg.Done()
			for _, tokens := range chunk {
				lc.totalQueries++
				seen := make(map[string]struct{}, len(tokens))
				for _, tok := range tokens {
					if tok == "" {
						continue
					}
					if _, ok := seen[tok]; ok {
						continue
					}
					seen[tok] = struct{}{}
					lc.tokenDF[tok]++
				}
			}
		}(queries[start:end], lc)
	}
	wg.Wait()

	for _, lc := range locals {
		if lc == nil {
			continue
		}
		a.totalQueries += lc.totalQueries
		for tok, df := range lc.tokenDF {
			a.tokenDF[tok] += df
		}
	}
}

// Stats is an immutable snapshot of accumulated counts.
type Stats struct {
	TotalQueries int64
	TokenDF      map[string]int64
}

// Snapshot copies out the analyzer's current state.
func (a *Analyzer) Snapshot() Stats {
	cp := make(map[string]int64, len(a.tokenDF))
	for tok, df := range a.tokenDF {
		cp[tok] = df
	}
	return Stats{TotalQueries: a.totalQueries, TokenDF: cp}
}

// scale converts a salience score into the fixed-point weight domain the
// term-weight FST stores (u64, rounded to two decimal digits of
// precision the way shard weight bytes are).
const scale = 100.0

// Weights turns document-frequency counts into the FST-ready word→weight
// map: rare tokens (low DF relative to corpus size) get high weight,
// ubiquitous tokens trend toward zero.
func (s Stats) Weights(calc *pmi.Calculator) map[string]uint64 {
	out := make(map[string]uint64, len(s.TokenDF))
	for tok, df := range s.TokenDF {
		salience := calc.Salience(df, s.TotalQueries)
		w := salience * scale
		if w < 0 {
			w = 0
		}
		out[tok] = uint64(math.Round(w))
	}
	return out
}

// SortedEntries returns the weight map's keys in lexicographic order,
// the order vellum requires for Insert calls while building an FST.
func SortedEntries(weights map[string]uint64) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
