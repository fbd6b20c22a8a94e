// Package rank scores candidate queries retrieved from a shard against a
// parsed search query, combining n-gram weight overlap with a must-have
// gate and small recency/authority terms.
package rank

import "math"

// Weights defines the scoring weights.
type Weights struct {
	AlphaOverlap float64 // n-gram weight overlap
	GammaRecency float64 // time decay
	EtaAuthority float64 // click/impression authority
}

// Scorer calculates hybrid scores for candidate-query ranking.
type Scorer struct {
	weights      Weights
	halfLifeDays float64
}

// NewScorer creates a new scorer with the given weights and recency half-life.
func NewScorer(w Weights, halfLifeDays float64) *Scorer {
	if halfLifeDays <= 0 {
		halfLifeDays = 30
	}
	return &Scorer{weights: w, halfLifeDays: halfLifeDays}
}

// Query is the search-side input to scoring: the n-gram keys produced by
// the fingerprinting pipeline with their weights, and the subset that must
// be present in a candidate for it to score above zero.
type Query struct {
	Ngrams   map[string]float64
	MustHave []string
}

// Candidate is one retrieved posting, reconstituted with the n-gram weights
// recorded for it at index time plus its recency/authority signals.
type Candidate struct {
	PQID        int64
	Ngrams      map[string]float64
	AgeDays     float64
	Impressions int64
}

// ScoreBreakdown exposes each term of the score for explain output.
type ScoreBreakdown struct {
	Overlap   float64
	Recency   float64
	Authority float64
	Total     float64
}

// Score computes a hybrid score for a candidate against query.
//
// score = α·overlap + γ·recency + η·authority, or 0 if candidate is
// missing any of query's must-have n-grams.
func (s *Scorer) Score(query Query, candidate Candidate) float64 {
	return s.ScoreWithBreakdown(query, candidate).Total
}

// ScoreWithBreakdown computes the score with its component terms, for
// explainable result cards.
func (s *Scorer) ScoreWithBreakdown(query Query, candidate Candidate) ScoreBreakdown {
	for _, key := range query.MustHave {
		if _, ok := candidate.Ngrams[key]; !ok {
			return ScoreBreakdown{}
		}
	}

	overlap := weightedOverlap(query.Ngrams, candidate.Ngrams)
	recency := math.Exp(-math.Ln2 * candidate.AgeDays / s.halfLifeDays)
	authority := math.Log(float64(candidate.Impressions) + 1)

	b := ScoreBreakdown{
		Overlap:   s.weights.AlphaOverlap * overlap,
		Recency:   s.weights.GammaRecency * recency,
		Authority: s.weights.EtaAuthority * authority,
	}
	b.Total = b.Overlap + b.Recency + b.Authority
	return b
}

// weightedOverlap sums min(queryWeight, candidateWeight) over shared keys,
// normalized by the query's total weight so the term stays in [0,1] for a
// perfectly-matching candidate.
func weightedOverlap(query, candidate map[string]float64) float64 {
	if len(query) == 0 {
		return 0
	}

	var shared, total float64
	for key, qw := range query {
		total += qw
		if cw, ok := candidate[key]; ok {
			shared += math.Min(qw, cw)
		}
	}
	if total == 0 {
		return 0
	}
	return shared / total
}
