package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/orchidautomation/playbook-cli/internal/pipeline"
	"github.com/orchidautomation/playbook-cli/internal/registry"
	"github.com/orchidautomation/playbook-cli/internal/store"
	"github.com/orchidautomation/playbook-cli/pkg/anthropic"
	"github.com/orchidautomation/playbook-cli/pkg/firecrawl"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "playbook.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newPipeline builds a fresh pipeline for one run. Pipelines carry per-run
// state (token usage, cache primer), so serve builds one per request.
func newPipeline() (*pipeline.Pipeline, error) {
	if cfg.Firecrawl.Key == "" {
		return nil, eris.New("firecrawl key is required (PLAYBOOK_FIRECRAWL_KEY)")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (PLAYBOOK_ANTHROPIC_KEY)")
	}

	reg, err := registry.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load specialist registry")
	}

	fetcher := firecrawl.NewClient(cfg.Firecrawl.Key,
		firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL),
		firecrawl.WithRateLimit(cfg.Firecrawl.RequestsPerSec))
	llm := anthropic.NewClient(cfg.Anthropic.Key)

	return pipeline.Build(pipeline.NewDeps(cfg, fetcher, llm, reg))
}
