// Package parser is the query-fingerprint pipeline's public entry point. It
// wires normalize -> tokenize -> weights -> stopngram -> compose (C1-C5)
// into a single pure, single-threaded Parse call, and exposes the matcher
// (C6) for comparing a candidate query against a parsed one.
package parser

import (
	"github.com/cognicore/qpick/pkg/qpick/compose"
	"github.com/cognicore/qpick/pkg/qpick/lexicon"
	"github.com/cognicore/qpick/pkg/qpick/match"
	"github.com/cognicore/qpick/pkg/qpick/normalize"
	"github.com/cognicore/qpick/pkg/qpick/stopngram"
	"github.com/cognicore/qpick/pkg/qpick/tokenize"
	"github.com/cognicore/qpick/pkg/qpick/weights"
)

// Mode re-exports tokenize.Mode: Index for corpus fingerprints, Search for
// incoming queries. Both modes produce identical tokens and must-have
// indices; only the synonym overlay and its derived n-grams differ.
type Mode = tokenize.Mode

const (
	Index  = tokenize.Index
	Search = tokenize.Search
)

// Output is the parser's full result for one query, matching spec §3's
// parser output tuple.
type Output struct {
	Tokens         []string
	TokenWeights   []float64
	Ngrams         []string
	NgramWeights   []float64
	NgramToIndices map[string][]int
	MustHave       []int
	Synonyms       map[int]string
}

// Parser holds the four immutable, read-only-after-construction external
// collaborators. A Parser has no mutable state after New and is safe for
// concurrent Parse calls.
type Parser struct {
	weights   lexicon.WeightSource
	stopwords lexicon.StopwordSource
	toponyms  lexicon.ToponymSource
	synonyms  lexicon.SynonymSource
}

// New builds a Parser. toponyms and synonyms may be nil: the pipeline
// degrades gracefully (no toponym must-have promotion, no dictionary
// synonyms) rather than failing.
func New(weights lexicon.WeightSource, stopwords lexicon.StopwordSource, toponyms lexicon.ToponymSource, synonyms lexicon.SynonymSource) *Parser {
	return &Parser{
		weights:   weights,
		stopwords: stopwords,
		toponyms:  toponyms,
		synonyms:  synonyms,
	}
}

// Parse runs C1 through C5 over query and returns the fingerprint. It never
// fails for well-formed UTF-8 input; an empty or all-punctuation query
// yields an Output with empty slices/maps.
func (p *Parser) Parse(query string, mode Mode) Output {
	normalized := normalize.Normalize(query)

	var dict tokenize.SynonymDict
	if p.synonyms != nil {
		dict = p.synonyms
	}
	tok := tokenize.Tokenize(normalized, mode, dict)

	class := weights.Classify(tok.Tokens, p.weights, p.stopwords, p.toponyms, p.synonyms, tok.Synonyms)

	stopCol := stopngram.Build(tok.Tokens, class.Weights, class.StopIndices, class.WordIndices, tok.Synonyms)

	composed := compose.Compose(tok.Tokens, class.Weights, class.MustHaveSeed, class.Numerics, stopCol, tok.Synonyms, mode)

	return Output{
		Tokens:         tok.Tokens,
		TokenWeights:   class.Weights,
		Ngrams:         composed.Ngrams,
		NgramWeights:   composed.Weights,
		NgramToIndices: composed.ToIndices,
		MustHave:       composed.MustHave,
		Synonyms:       tok.Synonyms,
	}
}

// TokenSet returns the output's tokens as a set, the shape C6's Match
// expects for the "original query" side.
func (o Output) TokenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.Tokens))
	for _, t := range o.Tokens {
		set[t] = struct{}{}
	}
	return set
}

// Match runs C6: compares candidate against this Output's tokens, folding
// the candidate's own (query-local) synonym dictionary.
func (o Output) Match(candidate string, dict match.Dict) match.Result {
	return match.Match(candidate, o.TokenSet(), dict)
}
