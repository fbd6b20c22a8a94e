// Package lexicon loads the query parser's external, read-only assets: the
// stop-word set and the synonym dictionary. Both are plain text files,
// loaded once at process start and shared read-only by every subsequent
// Parse call — mirroring pkg/korel/lexicon's reverse-index design, adapted
// from a bidirectional word lexicon to the parser's simpler one-directional
// contract.
package lexicon

import (
	"bufio"
	"os"
	"strings"
)

// MissWeight is the sentinel raw weight returned for a word absent from the
// term-weight map. It is a numeric tombstone, not a real weight: changing it
// changes every downstream ranking decision.
const MissWeight uint64 = 6666

// WeightSource looks up a word's raw relevance weight. A miss is not an
// error: implementations return (MissWeight, false).
type WeightSource interface {
	Weight(word string) (uint64, bool)
}

// StopwordSource reports whether a token is a low-information stop-word.
type StopwordSource interface {
	Contains(word string) bool
}

// ToponymSource reports whether a token is a recognized place name.
type ToponymSource interface {
	Contains(word string) bool
}

// SynonymSource looks up a single preferred alternate for a word.
type SynonymSource interface {
	Lookup(word string) (string, bool)
}

// StopwordSet is an immutable, read-only-after-construction set of tokens,
// loaded from a text file with one token per line.
type StopwordSet struct {
	words map[string]struct{}
}

// LoadStopwordSet reads a stop-word file: blank lines and lines starting
// with '#' are ignored, every other line is lowercased and trimmed.
func LoadStopwordSet(path string) (*StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words[strings.ToLower(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &StopwordSet{words: words}, nil
}

// NewStopwordSet builds a set directly from a slice, for tests and
// in-process construction.
func NewStopwordSet(words []string) *StopwordSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return &StopwordSet{words: m}
}

// Contains implements StopwordSource.
func (s *StopwordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len reports the number of stop-words loaded.
func (s *StopwordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// SynonymDict is an immutable, read-only-after-construction map of
// word → preferred alternate, loaded from whitespace-separated pairs, one
// per line ("<word> <alternate>").
type SynonymDict struct {
	pairs map[string]string
}

// LoadSynonymDict reads a synonym dictionary file.
func LoadSynonymDict(path string) (*SynonymDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pairs[strings.ToLower(fields[0])] = strings.ToLower(fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &SynonymDict{pairs: pairs}, nil
}

// NewSynonymDict builds a dictionary directly from a map, for tests.
func NewSynonymDict(pairs map[string]string) *SynonymDict {
	m := make(map[string]string, len(pairs))
	for k, v := range pairs {
		m[strings.ToLower(k)] = strings.ToLower(v)
	}
	return &SynonymDict{pairs: m}
}

// Lookup implements SynonymSource.
func (d *SynonymDict) Lookup(word string) (string, bool) {
	if d == nil {
		return "", false
	}
	alt, ok := d.pairs[word]
	return alt, ok
}

// Len reports the number of entries loaded.
func (d *SynonymDict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pairs)
}
