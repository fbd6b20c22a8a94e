package tokenize

import (
	"reflect"
	"testing"

	"github.com/cognicore/qpick/pkg/qpick/normalize"
)

func TestSparseJoin(t *testing.T) {
	norm := normalize.Normalize("@x s e l e n a x")
	res := Tokenize(norm, Index, nil)
	want := []string{"xselenax"}
	if !reflect.DeepEqual(res.Tokens, want) {
		t.Fatalf("Tokens = %v, want %v (normalized=%q)", res.Tokens, want, norm)
	}
}

func TestNoSplitOnShortAlphaNumericSuffix(t *testing.T) {
	norm := normalize.Normalize("friends s01 e01 stream")
	res := Tokenize(norm, Index, nil)
	want := []string{"friends", "s01", "e01", "stream"}
	if !reflect.DeepEqual(res.Tokens, want) {
		t.Fatalf("Tokens = %v, want %v", res.Tokens, want)
	}
}

func TestSuffixSynonymOverlay(t *testing.T) {
	norm := normalize.Normalize("caddy14 d ersatzteile")
	res := Tokenize(norm, Search, nil)
	want := []string{"caddy", "14", "ersatzteile"}
	if !reflect.DeepEqual(res.Tokens, want) {
		t.Fatalf("Tokens = %v, want %v", res.Tokens, want)
	}
	if res.Synonyms[1] != "14d" {
		t.Fatalf("Synonyms[1] = %q, want %q (synonyms=%v)", res.Synonyms[1], "14d", res.Synonyms)
	}
}

func TestSuffixDroppedInIndexMode(t *testing.T) {
	norm := normalize.Normalize("caddy14 d ersatzteile")
	res := Tokenize(norm, Index, nil)
	if len(res.Synonyms) != 0 {
		t.Fatalf("Index mode should not populate synonym overlay, got %v", res.Synonyms)
	}
}

type staticDict map[string]string

func (d staticDict) Lookup(w string) (string, bool) {
	alt, ok := d[w]
	return alt, ok
}

func TestWordSynonymOverlay(t *testing.T) {
	norm := normalize.Normalize("millions several")
	res := Tokenize(norm, Search, staticDict{"millions": "million"})
	if res.Synonyms[0] != "million" {
		t.Fatalf("Synonyms[0] = %q, want %q", res.Synonyms[0], "million")
	}
}

func TestWordSynonymSkippedWhenAlreadyPresent(t *testing.T) {
	norm := normalize.Normalize("million millions")
	res := Tokenize(norm, Search, staticDict{"millions": "million"})
	if _, ok := res.Synonyms[1]; ok {
		t.Fatalf("synonym should be skipped when alternate already present among tokens, got %v", res.Synonyms)
	}
}

// TestMultiByteSingleCodepointKeptStandalone covers a 2-byte UTF-8,
// single-codepoint word ("é"): length checks throughout this package are
// byte length, not rune count, so a token like this (rune-length 1,
// byte-length 2) must be kept as a standalone token rather than absorbed
// as an orphan-letter suffix of its neighbor.
func TestMultiByteSingleCodepointKeptStandalone(t *testing.T) {
	res := Tokenize("cafe é clair", Index, nil)
	want := []string{"cafe", "é", "clair"}
	if !reflect.DeepEqual(res.Tokens, want) {
		t.Fatalf("Tokens = %v, want %v", res.Tokens, want)
	}
}

func TestTruncatesToFifteenTokens(t *testing.T) {
	norm := normalize.Normalize("one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen")
	res := Tokenize(norm, Index, nil)
	if len(res.Tokens) != MaxTokens {
		t.Fatalf("len(Tokens) = %d, want %d", len(res.Tokens), MaxTokens)
	}
}
