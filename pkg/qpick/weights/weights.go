// Package weights implements C3 of the query-fingerprint pipeline: raw
// term-weight lookup, stop-word/numeric/toponym classification, and
// L1-normalization of the resulting per-token weights.
package weights

import (
	"github.com/cognicore/qpick/pkg/qpick/lexicon"
)

// MissWeight mirrors lexicon.MissWeight so callers of this package don't
// need a second import just for the sentinel.
const MissWeight = lexicon.MissWeight

// Classification is the result of C3: the partitioned token indices, their
// L1-normalized weights, and the seed must-have indices derived from the
// best numeric and toponym representatives.
type Classification struct {
	WordIndices  []int
	StopIndices  []int
	Weights      []float64
	MustHaveSeed []int
	Numerics     map[int]struct{}
}

// Classify runs C3 over tokens, given the four read-only collaborators, the
// synonym dictionary (for the mode-independent toponym lookup spec §4.3
// describes), and the Search-mode synonym overlay (nil/empty in Index mode).
func Classify(tokens []string, tr lexicon.WeightSource, stop lexicon.StopwordSource, toponyms lexicon.ToponymSource, dict lexicon.SynonymSource, synonyms map[int]string) Classification {
	n := len(tokens)
	raw := make([]float64, n)

	var wordIndices, stopIndices []int
	numerics := make(map[int]struct{})

	numericRep, toponymRep := -1, -1
	var numericBest, toponymBest float64

	seen := make(map[string]struct{}, n)
	var norm float64

	for i, tok := range tokens {
		r := rawWeight(tok, tr)
		isStop := (stop != nil && stop.Contains(tok)) || len(tok) == 1

		if isStop {
			r *= 0.5
			raw[i] = r
			stopIndices = append(stopIndices, i)
			norm += r
			continue
		}

		if alt, ok := synonyms[i]; ok {
			if altW := rawWeight(alt, tr); altW > r {
				r = altW
			}
		}

		if containsDigit(tok) {
			numerics[i] = struct{}{}
			if numericRep == -1 || r > numericBest {
				numericRep, numericBest = i, r
			}
		}

		if toponyms != nil && isToponym(tok, i, synonyms, dict, toponyms) {
			if toponymRep == -1 || r > toponymBest {
				toponymRep, toponymBest = i, r
			}
		}

		wordIndices = append(wordIndices, i)
		raw[i] = r

		if _, dup := seen[tok]; !dup {
			seen[tok] = struct{}{}
			norm += r
		}
	}

	weightsOut := raw
	if norm > 0 {
		for i := range weightsOut {
			weightsOut[i] /= norm
		}
	}

	promoteImplicitStop(tokens, &wordIndices, &stopIndices, weightsOut)

	var mustHave []int
	if numericRep != -1 {
		mustHave = append(mustHave, numericRep)
	}
	if toponymRep != -1 && toponymRep != numericRep {
		mustHave = append(mustHave, toponymRep)
	}

	return Classification{
		WordIndices:  wordIndices,
		StopIndices:  stopIndices,
		Weights:      weightsOut,
		MustHaveSeed: mustHave,
		Numerics:     numerics,
	}
}

func rawWeight(tok string, tr lexicon.WeightSource) float64 {
	if tr == nil {
		return float64(lexicon.MissWeight)
	}
	w, ok := tr.Weight(tok)
	if !ok {
		return float64(lexicon.MissWeight)
	}
	return float64(w)
}

func containsDigit(tok string) bool {
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// isToponym implements spec §4.3's "the token (or its dictionary synonym)
// is a toponym": it checks the token itself, its dictionary synonym (a
// direct, mode-independent lookup against dict so Index mode classifies
// identically to Search mode), and the Search-mode overlay entry — which
// may carry a different alternate than the dictionary (e.g. a suffix-letter
// rejoin) and so is checked in addition to, not instead of, the dictionary.
func isToponym(tok string, idx int, synonyms map[int]string, dict lexicon.SynonymSource, toponyms lexicon.ToponymSource) bool {
	if toponyms.Contains(tok) {
		return true
	}
	if dict != nil {
		if alt, ok := dict.Lookup(tok); ok && toponyms.Contains(alt) {
			return true
		}
	}
	if alt, ok := synonyms[idx]; ok {
		return toponyms.Contains(alt)
	}
	return false
}

// promoteImplicitStop mirrors spec §4.3's "implicit stop promotion": when no
// token was classified as a stop-word, a sufficiently long query with a very
// low-weight token reclassifies that token's index as a stop, as a
// correction for corpora whose stop-word set is incomplete.
func promoteImplicitStop(tokens []string, wordIndices, stopIndices *[]int, normalized []float64) {
	if len(*stopIndices) != 0 || len(tokens) <= 3 {
		return
	}
	threshold := 1.0 / (2*float64(len(tokens)) + 1)

	minIdx := -1
	minW := 0.0
	for _, i := range *wordIndices {
		if minIdx == -1 || normalized[i] < minW {
			minIdx, minW = i, normalized[i]
		}
	}
	if minIdx == -1 || minW >= threshold {
		return
	}

	kept := (*wordIndices)[:0]
	for _, i := range *wordIndices {
		if i != minIdx {
			kept = append(kept, i)
		}
	}
	*wordIndices = kept
	*stopIndices = append(*stopIndices, minIdx)
}
