// Package cards builds explainable result cards from ranked candidate
// queries, pairing each match with the n-grams and score terms that
// produced it.
package cards

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/qpick/pkg/qpick/rank"
)

// Builder constructs explainable result cards, stamping each with a
// monotonic ULID so cards from the same retrieval batch sort by creation
// order.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// New creates a card builder.
func New() *Builder {
	return &Builder{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// ScoredCandidate is one ranked posting together with its score breakdown,
// ready to be rendered into a Card.
type ScoredCandidate struct {
	PQID      int64
	Reminder  int64
	Breakdown rank.ScoreBreakdown
}

// Explain carries the transparency fields a caller can surface to a user
// or log for offline review.
type Explain struct {
	QueryNgrams   []string
	MatchedNgrams []string
	MustHave      []string
}

// Card is one explainable retrieval result: the matched query identifiers
// ranked highest, with aggregated score terms and the explain trail.
type Card struct {
	ID             string
	Matches        []ScoredCandidate
	ScoreBreakdown map[string]float64
	Explain        Explain
}

// Build aggregates the top-ranked candidates for a query into a Card.
func (b *Builder) Build(query rank.Query, candidates []ScoredCandidate, matchedNgrams []string) Card {
	card := Card{
		ID:             ulid.MustNew(ulid.Now(), b.entropy).String(),
		Matches:        candidates,
		ScoreBreakdown: make(map[string]float64),
		Explain: Explain{
			QueryNgrams:   ngramKeys(query.Ngrams),
			MatchedNgrams: matchedNgrams,
			MustHave:      query.MustHave,
		},
	}

	var overlapSum, recencySum, authoritySum float64
	for _, c := range candidates {
		overlapSum += c.Breakdown.Overlap
		recencySum += c.Breakdown.Recency
		authoritySum += c.Breakdown.Authority
	}

	n := float64(len(candidates))
	if n > 0 {
		card.ScoreBreakdown["overlap"] = overlapSum / n
		card.ScoreBreakdown["recency"] = recencySum / n
		card.ScoreBreakdown["authority"] = authoritySum / n
	}

	return card
}

func ngramKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
