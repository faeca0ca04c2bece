// Package persona re-links loosely-named persona references across pipeline
// stages. Upstream generation stages render the same role title in slightly
// different forms ("VP of Sales" vs "VP Sales"); the resolver reconciles
// them by normalized string similarity instead of exact equality.
package persona

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

// DefaultThreshold is the minimum similarity ratio for a title match.
const DefaultThreshold = 0.7

// Resolver matches persona titles against candidate records. Candidate
// lists are single-digit size, so a linear scan per lookup is fine.
type Resolver struct {
	threshold float64
	params    *levenshtein.Params
}

// NewResolver builds a resolver with the given similarity threshold.
// Thresholds outside (0, 1] fall back to DefaultThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		threshold: threshold,
		params:    levenshtein.NewParams(),
	}
}

// Resolve finds the candidate whose title is most similar to query, provided
// the similarity reaches the resolver's threshold. The second return is the
// winning similarity score. A no-match result is an expected outcome, not an
// error; callers skip generation for that persona and continue.
//
// Ties keep the first candidate encountered, so iteration order over
// candidates is part of the contract.
func (r *Resolver) Resolve(query string, candidates []model.BuyerPersona) (model.BuyerPersona, float64, bool) {
	normQuery := normalizeTitle(query)
	if normQuery == "" {
		return model.BuyerPersona{}, 0, false
	}

	var (
		best      model.BuyerPersona
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		normTitle := normalizeTitle(c.Title)
		if normTitle == "" {
			continue
		}
		score := levenshtein.Similarity(normQuery, normTitle, r.params)
		if score > bestScore {
			best = c
			bestScore = score
			found = true
		}
	}

	if !found || bestScore < r.threshold {
		return model.BuyerPersona{}, bestScore, false
	}
	return best, bestScore, true
}

// normalizeTitle lowercases and collapses internal whitespace so similarity
// scoring sees role words, not formatting.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
