// Package normalize implements the first stage of the query-fingerprint
// pipeline: folding punctuation, case, umlauts and digit runs into a single
// canonical lowercase string shared by indexing and search.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// deleted characters are removed outright.
const deleted = "!,?:'"

// replaced characters become a single space.
const replaced = "#@();./+-_"

var digitRunRe = regexp.MustCompile(`(?i)([a-z]{2,}|\s|^)(\d{2,})`)

var umlautReplacer = strings.NewReplacer(
	"ß", "ss",
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
)

// Normalize folds punctuation, lowercases, transliterates umlauts and splits
// digit/letter runs, in that order. It never fails: any valid UTF-8 input
// maps to a (possibly empty) normalized string.
func Normalize(s string) string {
	if hasPunctuation(s) {
		s = foldPunctuation(s)
	}
	s = strings.ToLower(s)
	s = umlautReplacer.Replace(s)
	s = splitDigitRuns(s)
	return strings.TrimSpace(s)
}

func hasPunctuation(s string) bool {
	return strings.ContainsAny(s, deleted+replaced)
}

// foldPunctuation operates byte-wise: every matched character is ASCII, so
// scanning the UTF-8 byte stream directly is safe and avoids a rune decode
// pass over the whole string.
func foldPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case strings.IndexByte(deleted, c) >= 0:
			// dropped
		case strings.IndexByte(replaced, c) >= 0:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitDigitRuns inserts a space before and after any run of 2+ digits that
// is preceded by the string start, whitespace, or a run of 2+ letters. No
// space is added where whitespace (or the end of the string) already
// follows the run, so a second pass leaves the result unchanged.
func splitDigitRuns(s string) string {
	locs := digitRunRe.FindAllStringIndex(s, -1)
	next := 0
	return digitRunRe.ReplaceAllStringFunc(s, func(m string) string {
		end := locs[next][1]
		next++
		after := " "
		if end == len(s) || unicode.IsSpace(rune(s[end])) {
			after = ""
		}
		sub := digitRunRe.FindStringSubmatch(m)
		boundary, digits := sub[1], sub[2]
		if boundary == "" {
			return " " + digits + after
		}
		if unicode.IsSpace(rune(boundary[len(boundary)-1])) {
			return boundary + digits + after
		}
		return boundary + " " + digits + after
	})
}
