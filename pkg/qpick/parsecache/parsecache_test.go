package parsecache

import (
	"testing"

	"github.com/cognicore/qpick/pkg/qpick/lexicon"
	"github.com/cognicore/qpick/pkg/qpick/parser"
)

type fakeWeights map[string]uint64

func (f fakeWeights) Weight(w string) (uint64, bool) {
	v, ok := f[w]
	if !ok {
		return lexicon.MissWeight, false
	}
	return v, true
}

func TestParseCachesRepeatedQuery(t *testing.T) {
	p := parser.New(fakeWeights{"paris": 900}, nil, nil, nil)
	c := New(p, 16)

	out1 := c.Parse("paris ticket", parser.Index)
	out2 := c.Parse("paris ticket", parser.Index)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after repeating the same query", c.Len())
	}
	if len(out1.Tokens) != len(out2.Tokens) {
		t.Fatalf("cached output diverges from original: %v vs %v", out1.Tokens, out2.Tokens)
	}
}

func TestParseDistinguishesModes(t *testing.T) {
	p := parser.New(fakeWeights{"paris": 900}, nil, nil, nil)
	c := New(p, 16)

	c.Parse("paris ticket", parser.Index)
	c.Parse("paris ticket", parser.Search)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (Index and Search cached separately)", c.Len())
	}
}

func TestZeroSizeDisablesCache(t *testing.T) {
	p := parser.New(fakeWeights{"paris": 900}, nil, nil, nil)
	c := New(p, 0)

	c.Parse("paris", parser.Index)
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 with caching disabled", c.Len())
	}
}
