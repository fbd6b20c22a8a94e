// Package match implements C6 of the query-fingerprint pipeline: comparing
// a candidate query's tokens against the original query's token set, with
// one-directional, one-pass synonym folding.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/qpick/pkg/qpick/normalize"
)

// Dict resolves a candidate-local synonym: a word to its preferred
// alternate, distinct from the index-wide synonym dictionary.
type Dict interface {
	Lookup(word string) (string, bool)
}

// Result is C6's output.
type Result struct {
	CandidateTokens []string
	Matches         map[string]struct{}
	Missing         map[string]struct{}
	Excess          map[string]struct{}
}

// Match runs C6: normalize and tokenize the candidate, fold its local
// synonyms into the original token set, and report matches/missing/excess.
func Match(candidate string, original map[string]struct{}, dict Dict) Result {
	candTokens := candidateTokens(candidate)

	candSet := make(map[string]struct{}, len(candTokens))
	for _, t := range candTokens {
		candSet[t] = struct{}{}
	}

	matches := make(map[string]struct{})
	for t := range candSet {
		if _, ok := original[t]; ok {
			matches[t] = struct{}{}
		}
	}

	if dict != nil {
		for _, candWord := range orderedDictKeys(candTokens, dict) {
			synonym, _ := dict.Lookup(candWord)
			if _, inCand := candSet[candWord]; !inCand {
				continue
			}
			if _, already := matches[synonym]; already {
				continue
			}
			matches[synonym] = struct{}{}
			delete(candSet, candWord)
		}
	}

	missing := make(map[string]struct{})
	for t := range original {
		if _, ok := matches[t]; !ok {
			missing[t] = struct{}{}
		}
	}

	excess := make(map[string]struct{})
	for t := range candSet {
		if _, ok := matches[t]; !ok {
			excess[t] = struct{}{}
		}
	}

	return Result{
		CandidateTokens: candTokens,
		Matches:         matches,
		Missing:         missing,
		Excess:          excess,
	}
}

// candidateTokens normalizes and splits the candidate, keeping tokens of
// byte-length >= 2 or single digits, in order of appearance.
func candidateTokens(candidate string) []string {
	norm := normalize.Normalize(candidate)
	fields := strings.Fields(norm)

	var kept []string
	for _, f := range fields {
		n := len(f)
		if n >= 2 {
			kept = append(kept, f)
			continue
		}
		r, _ := utf8.DecodeRuneInString(f)
		if r >= '0' && r <= '9' {
			kept = append(kept, f)
		}
	}
	return kept
}

// orderedDictKeys iterates the candidate's synonym dict in candidate-token
// order, so folding is deterministic regardless of map iteration order.
func orderedDictKeys(candTokens []string, dict Dict) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, t := range candTokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := dict.Lookup(t); ok {
			keys = append(keys, t)
		}
	}
	return keys
}
