// Package fstweight provides FST-backed implementations of the lexicon's
// WeightSource and ToponymSource, matching spec §6's external-interface
// description: "Term-weight FST: key -> u64 (sentinel 6666 for miss)" and
// "Toponym set: FST set membership". The underlying finite-state transducer
// comes from github.com/blevesearch/vellum — no library in the reference
// corpus implements one, so this is a named, deliberate addition rather
// than something grounded on teacher code (see DESIGN.md).
package fstweight

import (
	"os"

	"github.com/blevesearch/vellum"

	"github.com/cognicore/qpick/pkg/qpick/lexicon"
)

// present is the value vellum stores for every toponym; the FST here is used
// purely for set membership, not for a weight payload.
const present uint64 = 1

// WeightMap is an immutable, read-only-after-construction term-weight map
// backed by a byte-ordered FST. Word keys must be inserted in lexicographic
// order at build time; WeightMap itself never mutates the transducer.
type WeightMap struct {
	fst *vellum.FST
	raw []byte
}

// LoadWeightMap mmaps a vellum-encoded FST file produced by BuildWeightMap
// (as driven by cmd/qpick-buildweights).
func LoadWeightMap(path string) (*WeightMap, error) {
	fst, err := vellum.Open(path)
	if err != nil {
		return nil, err
	}
	return &WeightMap{fst: fst}, nil
}

// LoadWeightMapBytes builds a WeightMap from an in-memory FST image, for
// tests and embedded assets.
func LoadWeightMapBytes(data []byte) (*WeightMap, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, err
	}
	return &WeightMap{fst: fst, raw: data}, nil
}

// Weight implements lexicon.WeightSource. A miss returns
// (lexicon.MissWeight, false); callers that only need the weight value can
// ignore the second return and still get the sentinel on miss.
func (m *WeightMap) Weight(word string) (uint64, bool) {
	if m == nil || m.fst == nil {
		return lexicon.MissWeight, false
	}
	v, exists, err := m.fst.Get([]byte(word))
	if err != nil || !exists {
		return lexicon.MissWeight, false
	}
	return v, true
}

// Close releases the underlying FST's mmap, if any.
func (m *WeightMap) Close() error {
	if m == nil || m.fst == nil {
		return nil
	}
	return m.fst.Close()
}

var _ lexicon.WeightSource = (*WeightMap)(nil)

// ToponymSet is an immutable FST-backed set of recognized place names.
type ToponymSet struct {
	fst *vellum.FST
}

// LoadToponymSet mmaps a vellum-encoded FST set file.
func LoadToponymSet(path string) (*ToponymSet, error) {
	fst, err := vellum.Open(path)
	if err != nil {
		return nil, err
	}
	return &ToponymSet{fst: fst}, nil
}

// LoadToponymSetBytes builds a ToponymSet from an in-memory FST image.
func LoadToponymSetBytes(data []byte) (*ToponymSet, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, err
	}
	return &ToponymSet{fst: fst}, nil
}

// Contains implements lexicon.ToponymSource.
func (s *ToponymSet) Contains(word string) bool {
	if s == nil || s.fst == nil {
		return false
	}
	_, exists, err := s.fst.Get([]byte(word))
	return err == nil && exists
}

// Close releases the underlying FST's mmap, if any.
func (s *ToponymSet) Close() error {
	if s == nil || s.fst == nil {
		return nil
	}
	return s.fst.Close()
}

var _ lexicon.ToponymSource = (*ToponymSet)(nil)

// BuildWeightMap writes a word -> weight FST to path. Entries must already
// be sorted lexicographically by key, matching vellum.Builder's contract.
func BuildWeightMap(path string, entries func(insert func(word string, weight uint64) error) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	builder, err := vellum.New(f, nil)
	if err != nil {
		return err
	}
	if err := entries(func(word string, weight uint64) error {
		return builder.Insert([]byte(word), weight)
	}); err != nil {
		builder.Close()
		return err
	}
	return builder.Close()
}

// BuildToponymSet writes a set-membership FST to path. words must already be
// sorted lexicographically.
func BuildToponymSet(path string, words []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	builder, err := vellum.New(f, nil)
	if err != nil {
		return err
	}
	for _, w := range words {
		if err := builder.Insert([]byte(w), present); err != nil {
			builder.Close()
			return err
		}
	}
	return builder.Close()
}
