package stopngram

import "testing"

func findNgram(c Collection, key string) (StopNgram, bool) {
	for _, g := range c.Ngrams {
		if g.Key == key {
			return g, true
		}
	}
	return StopNgram{}, false
}

func TestLeadingStopBigram(t *testing.T) {
	tokens := []string{"the", "house"}
	weight := []float64{0.1, 0.9}
	c := Build(tokens, weight, []int{0}, []int{1}, nil)

	if len(c.Ngrams) != 1 {
		t.Fatalf("Ngrams = %+v, want exactly 1 entry", c.Ngrams)
	}
	g := c.Ngrams[0]
	if g.Key != "house the" {
		t.Fatalf("Key = %q, want %q", g.Key, "house the")
	}
	if g.Weight != 1.0 {
		t.Fatalf("Weight = %v, want 1.0", g.Weight)
	}
	if len(g.Indices) != 2 || g.Indices[0] != 0 || g.Indices[1] != 1 {
		t.Fatalf("Indices = %v, want [0 1]", g.Indices)
	}
}

func TestLeadingStopTrigramThenTrailingSolo(t *testing.T) {
	tokens := []string{"a", "to", "car", "shop"}
	weight := []float64{0.1, 0.1, 0.4, 0.4}
	c := Build(tokens, weight, []int{0, 1}, []int{2, 3}, nil)

	if _, ok := findNgram(c, "a car to"); !ok {
		t.Fatalf("expected trigram key \"a car to\" in %+v", c.Ngrams)
	}
	if _, ok := findNgram(c, "shop"); !ok {
		t.Fatalf("expected trailing solo unigram \"shop\" in %+v", c.Ngrams)
	}
}

func TestInteriorLeftAbsorbByLengthRatio(t *testing.T) {
	tokens := []string{"alphabetically", "go", "at"}
	weight := []float64{0.5, 0.3, 0.2}
	c := Build(tokens, weight, []int{1}, []int{0, 2}, nil)

	if _, ok := findNgram(c, "alphabetically go"); !ok {
		t.Fatalf("expected left-absorbed bigram \"alphabetically go\" in %+v", c.Ngrams)
	}
	if _, ok := findNgram(c, "at"); !ok {
		t.Fatalf("expected trailing solo unigram \"at\" in %+v", c.Ngrams)
	}
}

func TestNoStopWordsProducesAllUnigrams(t *testing.T) {
	tokens := []string{"friends", "s01", "e01", "stream"}
	weight := []float64{0.4, 0.3, 0.2, 0.1}
	c := Build(tokens, weight, nil, []int{0, 1, 2, 3}, nil)

	if len(c.Ngrams) != 4 {
		t.Fatalf("Ngrams = %+v, want 4 solo unigrams", c.Ngrams)
	}
	seen := make(map[int]bool)
	for _, g := range c.Ngrams {
		if len(g.Indices) != 1 {
			t.Fatalf("expected unigram, got %+v", g)
		}
		seen[g.Indices[0]] = true
	}
	for i := 0; i < len(tokens); i++ {
		if !seen[i] {
			t.Fatalf("index %d missing from emitted unigrams: %+v", i, c.Ngrams)
		}
	}
}

func TestSingleTokenQuery(t *testing.T) {
	c := Build([]string{"solo"}, []float64{1.0}, nil, []int{0}, nil)
	if len(c.Ngrams) != 1 || c.Ngrams[0].Key != "solo" {
		t.Fatalf("Ngrams = %+v, want single unigram \"solo\"", c.Ngrams)
	}
}

func TestEmptyInput(t *testing.T) {
	c := Build(nil, nil, nil, nil, nil)
	if len(c.Ngrams) != 0 {
		t.Fatalf("expected no ngrams for empty input, got %+v", c.Ngrams)
	}
}

func TestSynonymSideChannel(t *testing.T) {
	tokens := []string{"the", "house"}
	weight := []float64{0.1, 0.9}
	synonyms := map[int]string{1: "home"}
	c := Build(tokens, weight, []int{0}, []int{1}, synonyms)

	alts, ok := c.Alternates[0]
	if !ok || len(alts) != 1 {
		t.Fatalf("expected one synonym alternate at position 0, got %+v", c.Alternates)
	}
	if alts[0].Key != "home the" {
		t.Fatalf("alternate key = %q, want %q", alts[0].Key, "home the")
	}
}
