// Package stopaudit suggests stopword additions for the query-fingerprint
// pipeline from corpus-level document-frequency statistics, the same way
// the teacher's content-stoplist tuner flags ubiquitous, low-information
// tokens for review before they're added to the live stoplist.
package stopaudit

import (
	"context"
	"errors"

	"github.com/cognicore/qpick/pkg/qpick/buildweights"
	"github.com/cognicore/qpick/pkg/qpick/pmi"
)

// Reason explains why a token was flagged as a stopword candidate.
type Reason struct {
	HighDF   bool
	Salience float64
}

// Candidate is a token recommended for promotion to the stoplist.
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64
}

// Thresholds defines the criteria for stopword identification.
type Thresholds struct {
	DFPercent   float64 // flag tokens appearing in at least this % of queries
	MaxSalience float64 // flag tokens whose salience (rarity) is at or below this
}

// DefaultThresholds returns sensible defaults for a query corpus: a token
// that shows up in 60% of queries and carries almost no distinguishing
// salience is very likely noise ("the", "a", "for").
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 60.0, MaxSalience: 0.6}
}

// Manager tracks the current stoplist membership so already-known stop
// tokens are excluded from suggestions.
type Manager struct {
	known map[string]struct{}
}

// NewManager creates a manager seeded with the currently active stoplist.
func NewManager(current []string) *Manager {
	known := make(map[string]struct{}, len(current))
	for _, tok := range current {
		known[tok] = struct{}{}
	}
	return &Manager{known: known}
}

// IsKnown reports whether token is already on the stoplist.
func (m *Manager) IsKnown(token string) bool {
	_, ok := m.known[token]
	return ok
}

// SuggestCandidates scans corpus stats and returns tokens that cross both
// the high-document-frequency and low-salience thresholds, excluding
// tokens already on the stoplist.
func (m *Manager) SuggestCandidates(stats buildweights.Stats, calc *pmi.Calculator, th Thresholds) []Candidate {
	if stats.TotalQueries == 0 {
		return nil
	}

	var out []Candidate
	for tok, df := range stats.TokenDF {
		if m.IsKnown(tok) {
			continue
		}

		dfPercent := 100.0 * float64(df) / float64(stats.TotalQueries)
		salience := calc.Salience(df, stats.TotalQueries)

		highDF := dfPercent >= th.DFPercent
		lowSalience := salience <= th.MaxSalience
		if !highDF || !lowSalience {
			continue
		}

		out = append(out, Candidate{
			Token:  tok,
			Reason: Reason{HighDF: highDF, Salience: salience},
			Score:  dfPercent/100.0 + (1.0 - salience),
		})
	}
	return out
}

// Reviewer optionally performs an extra approval step (human or automated)
// before a candidate is accepted.
type Reviewer interface {
	Approve(ctx context.Context, cand Candidate) (bool, error)
}

// AutoTuner runs the end-to-end suggestion flow: gather stats, generate
// candidates, optionally route them through a reviewer.
type AutoTuner struct {
	Manager    *Manager
	Thresholds Thresholds
	Calc       *pmi.Calculator
	Reviewer   Reviewer
}

// Run produces (and optionally reviews) stopword candidates from stats.
func (t *AutoTuner) Run(ctx context.Context, stats buildweights.Stats) ([]Candidate, error) {
	if t.Manager == nil {
		return nil, errors.New("stopaudit: nil manager")
	}
	calc := t.Calc
	if calc == nil {
		calc = pmi.NewCalculator(1.0)
	}
	th := t.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}

	candidates := t.Manager.SuggestCandidates(stats, calc, th)
	if len(candidates) == 0 || t.Reviewer == nil {
		return candidates, nil
	}

	var approved []Candidate
	for _, cand := range candidates {
		ok, err := t.Reviewer.Approve(ctx, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, cand)
		}
	}
	return approved, nil
}
