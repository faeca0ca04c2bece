// Package pipeline wires the playbook generation stages into a workflow
// executor. Each source file holds the stages for one phase: site mapping,
// homepage handling, URL prioritization, batch scraping, vendor extraction,
// prospect analysis, and playbook assembly.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/config"
	"github.com/orchidautomation/playbook-cli/internal/registry"
	"github.com/orchidautomation/playbook-cli/internal/resilience"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
	"github.com/orchidautomation/playbook-cli/pkg/anthropic"
	"github.com/orchidautomation/playbook-cli/pkg/firecrawl"
)

// Deps bundles the external collaborators every stage draws on. One Deps
// belongs to one run; the usage tracker is not shared across runs.
type Deps struct {
	Fetcher  firecrawl.Client
	LLM      anthropic.Client
	Registry *registry.Registry
	Config   *config.Config

	usage   *usageTracker
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	clock   func() time.Time
}

func (d *Deps) now() time.Time {
	if d.clock != nil {
		return d.clock()
	}
	return time.Now()
}

// NewDeps builds the dependency bundle for one run.
func NewDeps(cfg *config.Config, fetcher firecrawl.Client, llm anthropic.Client, reg *registry.Registry) *Deps {
	res := cfg.Resilience
	retry := resilience.FromRetryConfig(cfg.Anthropic.MaxRetries,
		res.RetryInitialBackoffMS, res.RetryMaxBackoffMS,
		res.RetryMultiplier, res.RetryJitterFraction)
	circuit := resilience.FromCircuitConfig(res.CircuitFailureThreshold, res.CircuitResetTimeoutSecs)
	return &Deps{
		Fetcher:  fetcher,
		LLM:      llm,
		Registry: reg,
		Config:   cfg,
		usage:    newUsageTracker(),
		breaker:  resilience.NewCircuitBreaker(circuit),
		retry:    retry,
	}
}

// complete sends one system+user exchange to the model and returns the text
// reply. Calls go through the circuit breaker and transient-error retry, and
// token usage is attributed to the named stage.
func (d *Deps) complete(ctx context.Context, stage string, system []anthropic.SystemBlock, user string) (string, error) {
	req := anthropic.MessageRequest{
		Model:     d.Config.Anthropic.Model,
		MaxTokens: int64(d.Config.Anthropic.MaxTokens),
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	}

	retry := d.retry
	retry.OnRetry = resilience.RetryLogger("anthropic", stage)

	resp, err := resilience.ExecuteVal(ctx, d.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return d.LLM.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		return "", workflow.CollaboratorErr("anthropic call failed", err)
	}

	d.usage.record(resp.Usage)
	resp.Usage.LogCost(d.Config.Anthropic.Model, stage)
	return resp.Text(), nil
}

// fetch runs one Firecrawl call with transient-error retry. Firecrawl rate
// limits surface as 429s, which the client marks retryable.
func fetch[T any](ctx context.Context, d *Deps, stage string, fn func(ctx context.Context) (T, error)) (T, error) {
	retry := d.retry
	retry.OnRetry = resilience.RetryLogger("firecrawl", stage)
	return resilience.DoVal(ctx, retry, fn)
}

// systemText wraps a plain system prompt as an uncached block list.
func systemText(text string) []anthropic.SystemBlock {
	return []anthropic.SystemBlock{{Text: text}}
}

// cachePrimerText is the throwaway user turn sent with the primer; the API
// rejects requests with an empty messages array.
const cachePrimerText = "Reply with OK."

// warmCache primes the shared scraped-corpus prompt cache before the
// extraction fan-out. A primer failure is logged and swallowed; the
// specialists still run, they just pay the cache write themselves.
func (d *Deps) warmCache(ctx context.Context, system []anthropic.SystemBlock) {
	req := anthropic.MessageRequest{
		Model:     d.Config.Anthropic.Model,
		MaxTokens: 16,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: cachePrimerText}},
	}
	start := time.Now()
	resp, err := anthropic.PrimerRequest(ctx, d.LLM, req)
	if err != nil {
		zap.L().Warn("cache primer failed, specialists will write cache individually",
			zap.Error(err))
		return
	}
	d.usage.record(resp.Usage)
	zap.L().Info("prompt cache warmed",
		zap.Int64("cache_write_tokens", resp.Usage.CacheCreationInputTokens),
		zap.Duration("duration", time.Since(start)))
}

// scrapeCtx applies the configured batch scrape deadline.
func (d *Deps) scrapeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	secs := d.Config.Pipeline.BatchScrapeTimeoutSecs
	if secs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(secs)*time.Second)
}

var errNoLinks = eris.New("site map returned no links")
