package match

import "testing"

type staticDict map[string]string

func (d staticDict) Lookup(w string) (string, bool) {
	alt, ok := d[w]
	return alt, ok
}

func hasAll(set map[string]struct{}, words ...string) bool {
	if len(set) != len(words) {
		return false
	}
	for _, w := range words {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func TestMatchAuthoritativeScenario(t *testing.T) {
	original := map[string]struct{}{"several": {}, "million": {}}
	dict := staticDict{"millions": "million"}

	r := Match("2 millions", original, dict)

	if len(r.CandidateTokens) != 2 || r.CandidateTokens[0] != "2" || r.CandidateTokens[1] != "millions" {
		t.Fatalf("CandidateTokens = %v, want [2 millions]", r.CandidateTokens)
	}
	if !hasAll(r.Matches, "million") {
		t.Fatalf("Matches = %v, want {million}", r.Matches)
	}
	if !hasAll(r.Missing, "several") {
		t.Fatalf("Missing = %v, want {several}", r.Missing)
	}
	if !hasAll(r.Excess, "2") {
		t.Fatalf("Excess = %v, want {2}", r.Excess)
	}
}

func TestMatchDisjointSets(t *testing.T) {
	original := map[string]struct{}{"flat": {}, "berlin": {}}
	r := Match("apartment paris", original, nil)

	for m := range r.Matches {
		if _, ok := r.Missing[m]; ok {
			t.Fatalf("matches ∩ missing should be empty, found %q in both", m)
		}
		if _, ok := r.Excess[m]; ok {
			t.Fatalf("matches ∩ excess should be empty, found %q in both", m)
		}
	}
}

func TestMatchDropsSingleLetterTokensKeepsSingleDigits(t *testing.T) {
	r := Match("a 7 be car", map[string]struct{}{}, nil)
	want := []string{"7", "be", "car"}
	if len(r.CandidateTokens) != len(want) {
		t.Fatalf("CandidateTokens = %v, want %v", r.CandidateTokens, want)
	}
	for i, w := range want {
		if r.CandidateTokens[i] != w {
			t.Fatalf("CandidateTokens = %v, want %v", r.CandidateTokens, want)
		}
	}
}

func TestMatchNoSynonymDict(t *testing.T) {
	original := map[string]struct{}{"house": {}}
	r := Match("house garden", original, nil)
	if !hasAll(r.Matches, "house") {
		t.Fatalf("Matches = %v, want {house}", r.Matches)
	}
	if !hasAll(r.Excess, "garden") {
		t.Fatalf("Excess = %v, want {garden}", r.Excess)
	}
}
