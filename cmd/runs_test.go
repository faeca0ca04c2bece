package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

func sampleRuns(now time.Time) []model.Run {
	return []model.Run{
		{
			ID:     "11111111-2222-3333-4444-555555555555",
			Input:  model.RunInput{VendorDomain: "https://vendor.com", ProspectDomain: "https://acme.com"},
			Status: model.RunStatusComplete,
			Result: &model.RunResult{
				EstCostUSD: 0.25,
				TokenUsage: model.TokenUsage{InputTokens: 10000, OutputTokens: 2000},
			},
			CreatedAt: now.Add(-10 * time.Minute),
			UpdatedAt: now.Add(-6 * time.Minute),
		},
		{
			ID:        "66666666-7777-8888-9999-000000000000",
			Input:     model.RunInput{VendorDomain: "https://vendor.com", ProspectDomain: "https://globex.com"},
			Status:    model.RunStatusFailed,
			CreatedAt: now.Add(-48 * time.Hour),
			UpdatedAt: now.Add(-48 * time.Hour).Add(time.Minute),
		},
		{
			ID:        "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			Input:     model.RunInput{VendorDomain: "https://vendor.com", ProspectDomain: "https://initech.com"},
			Status:    model.RunStatusScraping,
			CreatedAt: now.Add(-2 * time.Minute),
			UpdatedAt: now.Add(-time.Minute),
		},
	}
}

func TestComputeRunStats(t *testing.T) {
	now := time.Now()
	stats := computeRunStats(sampleRuns(now), time.Time{})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Complete)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.InProgress)
	assert.InDelta(t, 240.0, stats.AvgDurSecs, 0.1)
	assert.InDelta(t, 0.25, stats.TotalCostUSD, 0.0001)
	assert.Equal(t, int64(12000), stats.TotalTokens)
}

func TestComputeRunStatsCutoff(t *testing.T) {
	now := time.Now()
	stats := computeRunStats(sampleRuns(now), now.Add(-24*time.Hour))

	// The failed run is 48h old and falls outside the window.
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 0, stats.Failed)
}

func TestFormatRunsList(t *testing.T) {
	var sb strings.Builder
	formatRunsList(&sb, sampleRuns(time.Now()))
	out := sb.String()

	assert.Contains(t, out, "VENDOR")
	assert.Contains(t, out, "PROSPECT")
	assert.Contains(t, out, "11111111")
	assert.NotContains(t, out, "11111111-2222")
	assert.Contains(t, out, "acme.com")
	assert.NotContains(t, out, "https://")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "4m0s")
}

func TestFormatRunStats(t *testing.T) {
	var sb strings.Builder
	formatRunStats(&sb, runStats{
		Total: 5, Complete: 3, Failed: 1, InProgress: 1,
		AvgDurSecs: 92.5, TotalCostUSD: 1.2345, TotalTokens: 54321,
	})
	out := sb.String()

	assert.Contains(t, out, "Total runs:")
	assert.Contains(t, out, "92.5s")
	assert.Contains(t, out, "$1.2345")
	assert.Contains(t, out, "54321")
}

func TestTruncateHelpers(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd"))
	assert.Equal(t, "short", truncateID("short"))

	long := "a-very-long-subdomain.example-corporation.com"
	assert.Equal(t, long[:27]+"...", truncateDomain(long))
	assert.Equal(t, "acme.com", truncateDomain("acme.com"))
}
