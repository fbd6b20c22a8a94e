// Package compose implements C5 of the query-fingerprint pipeline: the
// n-gram composer. It folds the stop-n-gram collection, weighted tokens and
// must-have seed into the parser's final deduplicated n-gram set and
// must-have index list.
package compose

import (
	"sort"
	"strings"

	"github.com/cognicore/qpick/pkg/qpick/stopngram"
	"github.com/cognicore/qpick/pkg/qpick/tokenize"
)

// Mode re-exports tokenize.Mode so callers of this package need not import
// tokenize directly.
type Mode = tokenize.Mode

const (
	Index  = tokenize.Index
	Search = tokenize.Search
)

// Result is C5's output: the deduplicated n-grams, their weights, the
// index sets each key maps back to, and the final must-have index list.
type Result struct {
	Ngrams    []string
	Weights   []float64
	ToIndices map[string][]int
	MustHave  []int
}

// Compose runs C5. tokens/weight are the full token sequence and its
// L1-normalized weights; mustHaveSeed/numerics come from pkg/qpick/weights;
// stopNgrams comes from pkg/qpick/stopngram; synonyms is the Search-mode
// overlay (nil in Index mode).
func Compose(tokens []string, weight []float64, mustHaveSeed []int, numerics map[int]struct{}, stopNgrams stopngram.Collection, synonyms map[int]string, mode Mode) Result {
	L := len(tokens)
	if L == 0 {
		return Result{ToIndices: map[string][]int{}}
	}
	if L == 1 {
		return Result{
			Ngrams:    []string{tokens[0]},
			Weights:   []float64{1.0},
			ToIndices: map[string][]int{tokens[0]: {0}},
			MustHave:  append([]int(nil), mustHaveSeed...),
		}
	}

	st := &state{
		tokens:    tokens,
		weight:    weight,
		synonyms:  synonyms,
		mode:      mode,
		toIndices: make(map[string][]int),
	}

	wordThreshold := 1.0 / maxAsFloat(2, L-1)
	ngramThreshold := 1.8 / float64(L)

	sorted := sortByWeightDesc(weight)

	st.selfEmitStopNgrams(stopNgrams, ngramThreshold)
	st.crossPairStopNgrams(stopNgrams, ngramThreshold)

	top, second := sorted[0], sorted[1]
	if L < 4 || weight[top] > 1.5*weight[second] {
		st.insertUnigram(top)
	}
	if weight[second] > 0.8*weight[top] {
		st.insertUnigram(second)
	}

	mustHave := st.selectMustHave(sorted, mustHaveSeed, numerics, wordThreshold, L)

	if L > 3 {
		st.topTriplesAndBigrams(sorted, wordThreshold)
	}
	if L >= 3 {
		st.insertPair(top, second)
	}
	if L >= 4 {
		st.insertPair(top, sorted[2])
	}

	return Result{
		Ngrams:    st.ngrams,
		Weights:   st.weights,
		ToIndices: st.toIndices,
		MustHave:  mustHave,
	}
}

type state struct {
	tokens   []string
	weight   []float64
	synonyms map[int]string
	mode     Mode

	ngrams    []string
	weights   []float64
	toIndices map[string][]int
}

func (s *state) insert(key string, weight float64, indices []int) {
	if _, exists := s.toIndices[key]; exists {
		return
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	s.ngrams = append(s.ngrams, key)
	s.weights = append(s.weights, weight)
	s.toIndices[key] = sorted
}

func (s *state) insertUnigram(idx int) {
	s.insert(s.tokens[idx], s.weight[idx], []int{idx})
	if s.mode == Search {
		if alt, ok := s.synonyms[idx]; ok {
			s.insert(alt, s.weight[idx], []int{idx})
		}
	}
}

func (s *state) insertPair(a, b int) {
	s.insertPairAltOn(a, b, a)
}

func (s *state) insertPairAltOn(a, b, altOn int) {
	key := bowKey(s.tokens, []int{a, b})
	w := s.weight[a] + s.weight[b]
	s.insert(key, w, []int{a, b})
	if s.mode == Search {
		if alt, ok := s.synonyms[altOn]; ok {
			s.insert(bowKeyWithSub(s.tokens, []int{a, b}, altOn, alt), w, []int{a, b})
		}
	}
}

func (s *state) selfEmitStopNgrams(col stopngram.Collection, ngramThreshold float64) {
	for i, ng := range col.Ngrams {
		if len(ng.Indices) < 2 || ng.Weight <= ngramThreshold {
			continue
		}
		s.insert(ng.Key, ng.Weight, ng.Indices)
		for _, alt := range col.Alternates[i] {
			s.insert(alt.Key, alt.Weight, alt.Indices)
		}
	}
}

func (s *state) crossPairStopNgrams(col stopngram.Collection, ngramThreshold float64) {
	list := col.Ngrams
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[i].Key == list[j].Key {
				break
			}
			step := j - i - 1
			combined := (1 - float64(step)/100) * (list[i].Weight + list[j].Weight)
			if step >= 3 && combined < ngramThreshold {
				continue
			}
			merged := union(list[i].Indices, list[j].Indices)
			s.insert(mergeKeys(list[i].Key, list[j].Key), combined, merged)

			if s.mode != Search {
				continue
			}
			for _, alt := range col.Alternates[i] {
				s.insert(mergeKeys(alt.Key, list[j].Key), combined, merged)
			}
			for _, alt := range col.Alternates[j] {
				s.insert(mergeKeys(list[i].Key, alt.Key), combined, merged)
			}
		}
	}
}

func (s *state) selectMustHave(sorted []int, seed []int, numerics map[int]struct{}, wordThreshold float64, L int) []int {
	result := append([]int(nil), seed...)

	top := sorted[0]
	weightTop := s.weight[top]
	picked := -1

	switch {
	case weightTop > 1.85*wordThreshold || (L > 1 && weightTop > 0.6):
		picked = top
	case L > 2 && weightTop > wordThreshold && s.weight[sorted[2]] < wordThreshold:
		picked = top
	case L <= 3 && len(seed) > 0:
		picked = top
	case L <= 6:
		topRelThresh := 0.85
		if L > 4 {
			topRelThresh = 0.78
		}
		second := sorted[1]
		if containsInt(result, second) || s.weight[second] < topRelThresh*weightTop {
			for _, idx := range sorted {
				if _, isNumeric := numerics[idx]; isNumeric {
					continue
				}
				if containsInt(result, idx) {
					continue
				}
				picked = idx
				break
			}
		}
	}

	if picked != -1 && !containsInt(result, picked) {
		result = append(result, picked)
	}

	if s.mode == Search && L < 5 && picked != -1 {
		s.insertUnigram(picked)
	}

	return result
}

func (s *state) topTriplesAndBigrams(sorted []int, wordThreshold float64) {
	top1, top2, top3 := sorted[0], sorted[1], sorted[2]
	last := sorted[len(sorted)-1]

	s.insertTripleAltOn(top1, top2, top3, top1)

	if s.weight[top1] <= wordThreshold {
		s.insertPairAltOn(top1, last, top1)
		return
	}
	s.insertPairAltOn(top2, last, top2)
	s.insertPairAltOn(top2, top3, top2)
}

func (s *state) insertTripleAltOn(a, b, c, altOn int) {
	indices := []int{a, b, c}
	key := bowKey(s.tokens, indices)
	w := s.weight[a] + s.weight[b] + s.weight[c]
	s.insert(key, w, indices)
	if s.mode == Search {
		if alt, ok := s.synonyms[altOn]; ok {
			s.insert(bowKeyWithSub(s.tokens, indices, altOn, alt), w, indices)
		}
	}
}

func sortByWeightDesc(weight []float64) []int {
	idx := make([]int, len(weight))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weight[idx[a]] > weight[idx[b]]
	})
	return idx
}

func bowKey(tokens []string, indices []int) string {
	words := make([]string, len(indices))
	for i, idx := range indices {
		words[i] = tokens[idx]
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

func bowKeyWithSub(tokens []string, indices []int, subIdx int, subWord string) string {
	words := make([]string, len(indices))
	for i, idx := range indices {
		if idx == subIdx {
			words[i] = subWord
		} else {
			words[i] = tokens[idx]
		}
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

// mergeKeys combines two already-sorted BoW key strings into one.
func mergeKeys(a, b string) string {
	words := append(strings.Fields(a), strings.Fields(b)...)
	sort.Strings(words)
	return strings.Join(words, " ")
}

func union(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, x := range a {
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	for _, x := range b {
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func maxAsFloat(a, b int) float64 {
	if a > b {
		return float64(a)
	}
	return float64(b)
}
