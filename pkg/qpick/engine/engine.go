// Package engine is the reference ANN index's query-time facade: it wires
// the fingerprint parser, the shard-posting store, and the ranker/card
// builder into a single Index/Search API, the way the teacher's top-level
// facade wires its pipeline, store, and ranker together.
package engine

import (
	"context"
	"sort"

	"github.com/cognicore/qpick/pkg/qpick/cards"
	"github.com/cognicore/qpick/pkg/qpick/parser"
	"github.com/cognicore/qpick/pkg/qpick/rank"
	"github.com/cognicore/qpick/pkg/qpick/shard"
	"github.com/cognicore/qpick/pkg/qpick/store"
)

// Parser is the subset of parser.Parser (or a cache wrapping one) the
// engine depends on, letting callers inject pkg/qpick/parsecache.Cache in
// front of the real parser without the engine knowing about caching.
type Parser interface {
	Parse(query string, mode parser.Mode) parser.Output
}

// Engine is the query-time facade over a shard store.
type Engine struct {
	store     store.Store
	parser    Parser
	scorer    *rank.Scorer
	cards     *cards.Builder
	numShards int64
}

// Options configures an Engine.
type Options struct {
	Store     store.Store
	Parser    Parser
	Weights   rank.Weights
	HalfLife  float64
	NumShards int64
}

// New builds an Engine from its collaborators.
func New(opts Options) *Engine {
	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = 1
	}
	return &Engine{
		store:     opts.Store,
		parser:    opts.Parser,
		scorer:    rank.NewScorer(opts.Weights, opts.HalfLife),
		cards:     cards.New(),
		numShards: numShards,
	}
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Index parses query in Index mode and writes one posting per n-gram to
// the store, identified by qid.
func (e *Engine) Index(ctx context.Context, qid int64, query string) error {
	out := e.parser.Parse(query, parser.Index)

	pqid := qid / e.numShards
	reminder := qid % e.numShards

	for i, ngram := range out.Ngrams {
		w := shard.WeightByte(out.NgramWeights[i])
		if err := e.store.PutShardEntry(ctx, ngram, pqid, reminder, w); err != nil {
			return err
		}
	}
	return nil
}

// SearchRequest is the input to Search.
type SearchRequest struct {
	Query string
	TopK  int
}

// SearchResponse is one explainable card per retrieval batch.
type SearchResponse struct {
	Card cards.Card
}

// Search parses query in Search mode, retrieves postings for every
// n-gram it produces, scores the resulting candidates, and returns them
// wrapped in an explainable Card.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	out := e.parser.Parse(req.Query, parser.Search)

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	if len(out.Ngrams) == 0 {
		return SearchResponse{}, nil
	}

	query := rank.Query{
		Ngrams:   make(map[string]float64, len(out.Ngrams)),
		MustHave: mustHaveNgramKeys(out),
	}
	for i, ngram := range out.Ngrams {
		query.Ngrams[ngram] = out.NgramWeights[i]
	}

	candidates, err := e.collectCandidates(ctx, out.Ngrams)
	if err != nil {
		return SearchResponse{}, err
	}

	matchedSet := make(map[string]struct{})
	scoredByPQID := make(map[int64]rank.Candidate, len(candidates))
	for pqid, ngrams := range candidates {
		scoredByPQID[pqid] = rank.Candidate{PQID: pqid, Ngrams: ngrams}
		for ng := range ngrams {
			if _, ok := query.Ngrams[ng]; ok {
				matchedSet[ng] = struct{}{}
			}
		}
	}

	scored := make([]cards.ScoredCandidate, 0, len(scoredByPQID))
	for pqid, cand := range scoredByPQID {
		breakdown := e.scorer.ScoreWithBreakdown(query, cand)
		scored = append(scored, cards.ScoredCandidate{PQID: pqid, Breakdown: breakdown})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Breakdown.Total > scored[j].Breakdown.Total })
	if len(scored) > topK {
		scored = scored[:topK]
	}

	matched := make([]string, 0, len(matchedSet))
	for ng := range matchedSet {
		matched = append(matched, ng)
	}

	card := e.cards.Build(query, scored, matched)
	return SearchResponse{Card: card}, nil
}

// collectCandidates builds a per-pqid n-gram weight map by looking up
// every query n-gram's postings and grouping rows by the query that
// produced them.
func (e *Engine) collectCandidates(ctx context.Context, ngrams []string) (map[int64]map[string]float64, error) {
	out := make(map[int64]map[string]float64)
	for _, ngram := range ngrams {
		rows, err := e.store.Lookup(ctx, ngram)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if out[row.PQID] == nil {
				out[row.PQID] = make(map[string]float64)
			}
			out[row.PQID][ngram] = float64(row.Weight) / 100.0
		}
	}
	return out, nil
}

// mustHaveNgramKeys maps the parser's must-have token indices to the
// n-gram key(s) that carry them, preferring the unigram key when one
// exists so must-have enforcement doesn't require a larger n-gram match.
func mustHaveNgramKeys(out parser.Output) []string {
	var keys []string
	for _, idx := range out.MustHave {
		best := ""
		for key, indices := range out.NgramToIndices {
			if !containsIndex(indices, idx) {
				continue
			}
			if best == "" || len(indices) < len(out.NgramToIndices[best]) {
				best = key
			}
		}
		if best != "" {
			keys = append(keys, best)
		}
	}
	return keys
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}
