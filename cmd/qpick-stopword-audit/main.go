// Command qpick-stopword-audit scans a TSV query corpus against the active
// stoplist and prints candidate tokens to promote, ranked by score.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/cognicore/qpick/pkg/qpick/buildweights"
	"github.com/cognicore/qpick/pkg/qpick/lexicon"
	"github.com/cognicore/qpick/pkg/qpick/normalize"
	"github.com/cognicore/qpick/pkg/qpick/pmi"
	"github.com/cognicore/qpick/pkg/qpick/shard"
	"github.com/cognicore/qpick/pkg/qpick/stopaudit"
	"github.com/cognicore/qpick/pkg/qpick/tokenize"
)

type candidateJSON struct {
	Token    string  `json:"token"`
	DF       int64   `json:"df"`
	Score    float64 `json:"score"`
	Salience float64 `json:"salience"`
}

func main() {
	var (
		input    = flag.String("input", "", "Path to TSV query corpus (required)")
		stoplist = flag.String("stoplist", "", "Path to the active stopword file (required)")
		epsilon  = flag.Float64("epsilon", 1.0, "PMI/salience smoothing constant")
	)
	flag.Parse()

	if *input == "" || *stoplist == "" {
		log.Fatal("--input and --stoplist are required")
	}

	set, err := lexicon.LoadStopwordSet(*stoplist)
	if err != nil {
		log.Fatalf("load stoplist: %v", err)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	analyzer := buildweights.NewAnalyzer()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		query, ok := shard.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		result := tokenize.Tokenize(normalize.Normalize(query), tokenize.Index, nil)
		analyzer.Process(result.Tokens)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("scan input: %v", err)
	}

	var known []string
	// StopwordSet doesn't expose its members directly, so the manager starts
	// empty and known stop-words are filtered out of its suggestions
	// afterwards by filterKnown.
	manager := stopaudit.NewManager(known)
	calc := pmi.NewCalculator(*epsilon)

	stats := analyzer.Snapshot()
	candidates := manager.SuggestCandidates(stats, calc, stopaudit.DefaultThresholds())
	candidates = filterKnown(candidates, set)

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	out := make([]candidateJSON, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, candidateJSON{
			Token:    c.Token,
			DF:       stats.TokenDF[c.Token],
			Score:    c.Score,
			Salience: c.Reason.Salience,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode candidates: %v", err)
	}
}

func filterKnown(cands []stopaudit.Candidate, set *lexicon.StopwordSet) []stopaudit.Candidate {
	out := make([]stopaudit.Candidate, 0, len(cands))
	for _, c := range cands {
		if set.Contains(c.Token) {
			continue
		}
		out = append(out, c)
	}
	return out
}
