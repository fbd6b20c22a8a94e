// Package stopngram implements C4 of the query-fingerprint pipeline: the
// stop-n-gram builder. It walks stop-word positions in token order and
// absorbs each into a bigram or trigram with one or two neighbors, emitting
// any non-stop tokens left over between stop positions as solo unigrams.
//
// This is the most intricate stage of the pipeline; the state machine below
// follows the case-by-case walk named in the design notes rather than a
// general scoring rule, to preserve the exact tie-breaking the format
// requires.
package stopngram

import (
	"sort"
	"strings"
)

// StopNgram is one absorbed n-gram: a BoW key, its combined weight, and the
// ascending token indices it was built from.
type StopNgram struct {
	Key     string
	Weight  float64
	Indices []int
}

// Collection is the builder's full output: the ordered n-grams plus a side
// map from an n-gram's position in Ngrams to its Search-mode synonym
// variants.
type Collection struct {
	Ngrams     []StopNgram
	Alternates map[int][]StopNgram
}

// Build runs C4 over a token sequence already classified by pkg/qpick/weights.
// tokens and weight must be the same length; stopIndices and wordIndices
// must partition 0..len(tokens)-1 and must each be ascending. synonyms is
// the Search-mode overlay (nil in Index mode).
func Build(tokens []string, weight []float64, stopIndices, wordIndices []int, synonyms map[int]string) Collection {
	n := len(tokens)
	c := Collection{Alternates: make(map[int][]StopNgram)}
	if n == 0 {
		return c
	}
	if n == 1 {
		c.emit(tokens, weight, synonyms, []int{0})
		return c
	}

	isStop := make([]bool, n)
	for _, i := range stopIndices {
		isStop[i] = true
	}

	b := &builder{
		tokens:   tokens,
		weight:   weight,
		isStop:   isStop,
		skip:     make(map[int]bool),
		linked:   make(map[int]bool),
		nonstops: append([]int(nil), wordIndices...),
		synonyms: synonyms,
		col:      &c,
	}

	for _, i := range stopIndices {
		if b.skip[i] {
			continue
		}
		switch {
		case i == 0:
			b.caseLeading(i)
		case i == n-1:
			b.caseTrailing(i)
		default:
			b.caseInterior(i)
		}
	}

	b.drainBefore(n)
	return c
}

type builder struct {
	tokens   []string
	weight   []float64
	isStop   []bool
	skip     map[int]bool
	linked   map[int]bool
	nonstops []int
	ptr      int
	synonyms map[int]string
	col      *Collection
}

func (b *builder) n() int { return len(b.tokens) }

// drainBefore flushes, as solo unigrams, every not-yet-linked non-stop
// index strictly less than limit.
func (b *builder) drainBefore(limit int) {
	for b.ptr < len(b.nonstops) && b.nonstops[b.ptr] < limit {
		idx := b.nonstops[b.ptr]
		b.ptr++
		if b.linked[idx] {
			continue
		}
		b.linked[idx] = true
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{idx})
	}
}

func (b *builder) caseLeading(i int) {
	n := b.n()
	j := i + 1
	if j >= n {
		b.linked[i] = true
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i})
		return
	}
	if j == n-1 || !b.isStop[j] {
		b.link(i, j)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, j})
		if b.isStop[j] {
			b.skip[j] = true
		}
		return
	}
	k := j + 1
	b.link(i, j, k)
	b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, j, k})
	b.skip[j] = true
	if k < n && b.isStop[k] {
		b.skip[k] = true
	}
}

func (b *builder) caseTrailing(i int) {
	j := i - 1
	b.drainBefore(j)
	if !b.linked[j] {
		b.link(j, i)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{j, i})
		return
	}
	b.mergeIntoLast(i)
}

func (b *builder) caseInterior(i int) {
	n := b.n()
	j, k := i-1, i+1
	b.drainBefore(j)

	jStop, kStop := b.isStop[j], b.isStop[k]

	switch {
	case kStop && !jStop:
		b.interiorStopRight(i, j, k)
	case jStop && !kStop:
		b.link(i, k)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k})
	case jStop && kStop:
		b.skip[k] = true
		if k == n-1 || b.isStop[k+1] {
			b.link(i, k)
			b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k})
		} else {
			b.skip[k+1] = true
			b.link(i, k, k+1)
			b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k, k + 1})
		}
	default:
		b.interiorNeitherStop(i, j, k)
	}
}

func (b *builder) interiorStopRight(i, j, k int) {
	n := b.n()
	switch {
	case k < n-1 && !b.isStop[k+1] && b.weight[k+1] >= b.weight[j]:
		if !b.linked[j] {
			b.linked[j] = true
			b.col.emit(b.tokens, b.weight, b.synonyms, []int{j})
		}
		b.link(i, k, k+1)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k, k + 1})
		b.skip[k] = true
		if k+1 < n && b.isStop[k+1] {
			b.skip[k+1] = true
		}
	case k < n-1 && b.weight[j] > b.weight[k+1] && !b.linked[j]:
		b.link(j, i)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{j, i})
	default:
		b.link(i, k)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k})
		b.skip[k] = true
	}
}

func (b *builder) interiorNeitherStop(i, j, k int) {
	leftAbsorb := b.linked[k] ||
		(!b.linked[j] && (byteLen(b.tokens[j]) >= 4*byteLen(b.tokens[k]) ||
			(byteLen(b.tokens[i]) == 1 && (b.weight[j] > b.weight[k] || allDigits(b.tokens[k])))))

	if leftAbsorb {
		b.link(j, i)
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{j, i})
		return
	}
	if !b.linked[j] {
		b.linked[j] = true
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{j})
	}
	b.link(i, k)
	b.col.emit(b.tokens, b.weight, b.synonyms, []int{i, k})
}

// mergeIntoLast folds the final token into the most recently emitted
// stop-n-gram in place, per spec §4.4 case C's fallback path.
func (b *builder) mergeIntoLast(i int) {
	if len(b.col.Ngrams) == 0 {
		b.linked[i] = true
		b.col.emit(b.tokens, b.weight, b.synonyms, []int{i})
		return
	}
	pos := len(b.col.Ngrams) - 1
	last := b.col.Ngrams[pos]

	indices := append(append([]int(nil), last.Indices...), i)
	sort.Ints(indices)

	last.Key = bowKey(b.tokens, indices)
	last.Weight += b.weight[i]
	last.Indices = indices
	b.col.Ngrams[pos] = last
	b.linked[i] = true

	delete(b.col.Alternates, pos)
	if len(indices) <= 3 {
		b.col.Alternates[pos] = synonymVariants(b.tokens, last.Weight, indices, b.synonyms)
	}
}

func (b *builder) link(indices ...int) {
	for _, idx := range indices {
		b.linked[idx] = true
	}
}

func (c *Collection) emit(tokens []string, weight []float64, synonyms map[int]string, indices []int) {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	var w float64
	for _, idx := range sorted {
		w += weight[idx]
	}

	pos := len(c.Ngrams)
	c.Ngrams = append(c.Ngrams, StopNgram{
		Key:     bowKey(tokens, sorted),
		Weight:  w,
		Indices: sorted,
	})

	if len(sorted) <= 3 {
		if alts := synonymVariants(tokens, w, sorted, synonyms); len(alts) > 0 {
			c.Alternates[pos] = alts
		}
	}
}

// synonymVariants builds, for each index in indices that has a synonym
// overlay entry, a BoW-key variant substituting only that one token.
func synonymVariants(tokens []string, weight float64, indices []int, synonyms map[int]string) []StopNgram {
	if len(synonyms) == 0 {
		return nil
	}
	var variants []StopNgram
	for _, x := range indices {
		alt, ok := synonyms[x]
		if !ok {
			continue
		}
		substituted := make([]string, len(tokens))
		copy(substituted, tokens)
		substituted[x] = alt
		variants = append(variants, StopNgram{
			Key:     bowKey(substituted, indices),
			Weight:  weight,
			Indices: append([]int(nil), indices...),
		})
	}
	return variants
}

// bowKey builds the bag-of-words key: the token strings at the given
// indices, sorted lexicographically and whitespace-joined.
func bowKey(tokens []string, indices []int) string {
	words := make([]string, len(indices))
	for i, idx := range indices {
		words[i] = tokens[idx]
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

func byteLen(s string) int { return len(s) }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
