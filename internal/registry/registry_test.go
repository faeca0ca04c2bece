package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"offerings",
		"case_studies",
		"proof_points",
		"value_props",
		"customers",
		"use_cases",
		"icp_personas",
		"differentiators",
	}, r.Names())

	for _, s := range r.Specialists {
		assert.NotEmpty(t, s.Description, "specialist %s", s.Name)
		assert.NotEmpty(t, s.Instructions, "specialist %s", s.Name)
		assert.NotEmpty(t, s.ResultField, "specialist %s", s.Name)
	}
}

func TestGet(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	s, ok := r.Get("icp_personas")
	require.True(t, ok)
	assert.Equal(t, "icp_personas", s.ResultField)

	_, ok = r.Get("nonexistent")
	assert.False(t, ok)
}

func TestPrompt(t *testing.T) {
	s := Specialist{
		Name:         "offerings",
		ResultField:  "offerings",
		Description:  "Expert at cataloging offerings.",
		Instructions: []string{"Extract all offerings.", "Include sources."},
	}

	p := s.Prompt()
	assert.Contains(t, p, "Expert at cataloging offerings.")
	assert.Contains(t, p, "1. Extract all offerings.")
	assert.Contains(t, p, "2. Include sources.")
	assert.Contains(t, p, `"offerings" array`)
}
