package pipeline

import (
	"sync"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/pkg/anthropic"
)

// usageTracker accumulates token usage across concurrently running stages.
type usageTracker struct {
	mu    sync.Mutex
	total anthropic.TokenUsage
	calls int
}

func newUsageTracker() *usageTracker {
	return &usageTracker{}
}

func (t *usageTracker) record(u anthropic.TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total.InputTokens += u.InputTokens
	t.total.OutputTokens += u.OutputTokens
	t.total.CacheCreationInputTokens += u.CacheCreationInputTokens
	t.total.CacheReadInputTokens += u.CacheReadInputTokens
	t.calls++
}

// Snapshot returns the accumulated usage in run-report form plus the
// estimated cost for the given model.
func (t *usageTracker) snapshot(llmModel string) (model.TokenUsage, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	usage := model.TokenUsage{
		InputTokens:  t.total.InputTokens + t.total.CacheCreationInputTokens + t.total.CacheReadInputTokens,
		OutputTokens: t.total.OutputTokens,
	}
	return usage, t.total.EstimateCost(llmModel)
}

func (t *usageTracker) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
