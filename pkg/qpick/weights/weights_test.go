package weights

import (
	"math"
	"testing"
)

type fakeWeights map[string]uint64

func (f fakeWeights) Weight(word string) (uint64, bool) {
	w, ok := f[word]
	return w, ok
}

type fakeSet map[string]struct{}

func (f fakeSet) Contains(word string) bool {
	_, ok := f[word]
	return ok
}

type fakeDict map[string]string

func (f fakeDict) Lookup(word string) (string, bool) {
	alt, ok := f[word]
	return alt, ok
}

func sum(ws []float64) float64 {
	var s float64
	for _, w := range ws {
		s += w
	}
	return s
}

func TestClassifyNormalizesToOne(t *testing.T) {
	tokens := []string{"disneyland", "paris", "ticket", "download"}
	tr := fakeWeights{"disneyland": 900, "paris": 700, "ticket": 300, "download": 50}
	c := Classify(tokens, tr, nil, nil, nil, nil)

	total := sum(c.Weights)
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("sum(weights) = %v, want ~1.0", total)
	}
	// "download" normalizes to 50/1950 ≈ 0.026, below 1/(2*4+1), so it is
	// implicitly promoted to a stop even without a stop-word set.
	if len(c.StopIndices) != 1 || c.StopIndices[0] != 3 {
		t.Fatalf("expected implicit stop promotion of index 3, got %v", c.StopIndices)
	}
}

func TestClassifyStopWordHalvedAndPartitioned(t *testing.T) {
	tokens := []string{"the", "house", "garden"}
	tr := fakeWeights{"the": 1000, "house": 500, "garden": 400}
	stop := fakeSet{"the": {}}
	c := Classify(tokens, tr, stop, nil, nil, nil)

	found := false
	for _, i := range c.StopIndices {
		if i == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected index 0 (\"the\") in StopIndices, got %v", c.StopIndices)
	}
	for _, i := range c.WordIndices {
		if i == 0 {
			t.Fatalf("index 0 should not also appear in WordIndices")
		}
	}
}

func TestClassifySingleLetterTreatedAsStop(t *testing.T) {
	tokens := []string{"caddy", "d", "ersatzteile"}
	tr := fakeWeights{"caddy": 400, "d": 6666, "ersatzteile": 300}
	c := Classify(tokens, tr, nil, nil, nil, nil)

	isStop := false
	for _, i := range c.StopIndices {
		if i == 1 {
			isStop = true
		}
	}
	if !isStop {
		t.Fatalf("single-letter token should be classified as stop, got stopIndices=%v", c.StopIndices)
	}
}

func TestClassifyNumericRepresentative(t *testing.T) {
	tokens := []string{"friends", "s01", "e01", "stream"}
	tr := fakeWeights{"friends": 500, "s01": 700, "e01": 300, "stream": 200}
	c := Classify(tokens, tr, nil, nil, nil, nil)

	if _, ok := c.Numerics[1]; !ok {
		t.Fatalf("expected index 1 (\"s01\") to be numeric")
	}
	if _, ok := c.Numerics[2]; !ok {
		t.Fatalf("expected index 2 (\"e01\") to be numeric")
	}
	if len(c.MustHaveSeed) == 0 || c.MustHaveSeed[0] != 1 {
		t.Fatalf("expected must-have seed to pick the higher-weighted numeric (index 1), got %v", c.MustHaveSeed)
	}
}

func TestClassifyToponymRepresentative(t *testing.T) {
	tokens := []string{"flights", "paris", "cheap"}
	tr := fakeWeights{"flights": 400, "paris": 600, "cheap": 200}
	toponyms := fakeSet{"paris": {}}
	c := Classify(tokens, tr, nil, toponyms, nil, nil)

	if len(c.MustHaveSeed) != 1 || c.MustHaveSeed[0] != 1 {
		t.Fatalf("expected toponym must-have seed = [1], got %v", c.MustHaveSeed)
	}
}

// TestClassifyDictionarySynonymToponym covers the path the review flagged:
// a token whose *dictionary* synonym is a toponym must be detected in Index
// mode, where the Search-mode overlay (the last argument) is always nil.
func TestClassifyDictionarySynonymToponym(t *testing.T) {
	tokens := []string{"flights", "paname", "cheap"}
	tr := fakeWeights{"flights": 400, "paname": 600, "cheap": 200}
	toponyms := fakeSet{"paris": {}}
	dict := fakeDict{"paname": "paris"}
	c := Classify(tokens, tr, nil, toponyms, dict, nil)

	if len(c.MustHaveSeed) != 1 || c.MustHaveSeed[0] != 1 {
		t.Fatalf("expected dictionary-synonym toponym must-have seed = [1], got %v", c.MustHaveSeed)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := Classify(nil, nil, nil, nil, nil, nil)
	if len(c.Weights) != 0 || len(c.WordIndices) != 0 || len(c.StopIndices) != 0 {
		t.Fatalf("expected all-empty classification for empty input, got %+v", c)
	}
}

func TestClassifyImplicitStopPromotion(t *testing.T) {
	tokens := []string{"apartment", "berlin", "cheap", "rental"}
	tr := fakeWeights{"apartment": 900, "berlin": 800, "cheap": 1, "rental": 700}
	c := Classify(tokens, tr, nil, nil, nil, nil)

	promoted := false
	for _, i := range c.StopIndices {
		if i == 2 {
			promoted = true
		}
	}
	if !promoted {
		t.Fatalf("expected the very low-weight token to be implicitly promoted to stop, stopIndices=%v", c.StopIndices)
	}
}
