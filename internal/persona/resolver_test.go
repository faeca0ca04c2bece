package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

func personas(titles ...string) []model.BuyerPersona {
	out := make([]model.BuyerPersona, len(titles))
	for i, t := range titles {
		out[i] = model.BuyerPersona{Title: t}
	}
	return out
}

func TestResolveMatchesSimilarTitle(t *testing.T) {
	r := NewResolver(0.7)

	match, score, ok := r.Resolve("VP of Sales", personas("VP Sales", "CMO"))
	require.True(t, ok)
	assert.Equal(t, "VP Sales", match.Title)
	assert.GreaterOrEqual(t, score, 0.7)
}

func TestResolveReturnsNoneBelowThreshold(t *testing.T) {
	r := NewResolver(0.7)

	_, _, ok := r.Resolve("VP of Sales", personas("CMO"))
	assert.False(t, ok)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := NewResolver(0.7)

	match, score, ok := r.Resolve("head OF engineering", personas("Head of Engineering"))
	require.True(t, ok)
	assert.Equal(t, "Head of Engineering", match.Title)
	assert.Equal(t, 1.0, score)
}

func TestResolveCollapsesWhitespace(t *testing.T) {
	r := NewResolver(0.7)

	match, _, ok := r.Resolve("  Chief   Revenue Officer ", personas("Chief Revenue Officer"))
	require.True(t, ok)
	assert.Equal(t, "Chief Revenue Officer", match.Title)
}

func TestResolveTieKeepsFirstCandidate(t *testing.T) {
	r := NewResolver(0.7)

	match, _, ok := r.Resolve("CTO", personas("CTO", "cto"))
	require.True(t, ok)
	assert.Equal(t, "CTO", match.Title)
}

func TestResolveHandlesEmptyInputs(t *testing.T) {
	r := NewResolver(0.7)

	_, _, ok := r.Resolve("", personas("VP Sales"))
	assert.False(t, ok)

	_, _, ok = r.Resolve("VP Sales", nil)
	assert.False(t, ok)

	_, _, ok = r.Resolve("VP Sales", personas("", "   "))
	assert.False(t, ok)
}

func TestNewResolverRejectsBadThreshold(t *testing.T) {
	r := NewResolver(-1)
	assert.Equal(t, DefaultThreshold, r.threshold)

	r = NewResolver(1.5)
	assert.Equal(t, DefaultThreshold, r.threshold)
}
