package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
)

// Pipeline is one run's worth of wired stages. Build a fresh Pipeline per
// run; it carries per-run state (usage, circuit breaker, cache primer).
type Pipeline struct {
	exec *workflow.Executor
	deps *Deps
}

// Build assembles the full stage graph against the given collaborators.
func Build(d *Deps) (*Pipeline, error) {
	exec, err := workflow.NewExecutor(
		siteMappingGroup(d),
		homepageScrapeGroup(d),
		homepageAnalysisGroup(d),
		prioritizeStage(d),
		batchScrapeStage(d),
		vendorExtractionGroup(d),
		prospectContextGroup(d),
		personasStage(d),
		summaryStage(d),
		componentsGroup(d),
		assembleStage(d),
	)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build")
	}
	return &Pipeline{exec: exec, deps: d}, nil
}

// Run executes the pipeline for one vendor/prospect pair. The returned
// RunResult is populated even on fatal failure; err is non-nil only when the
// run halted before assembling a playbook.
func (p *Pipeline) Run(ctx context.Context, input model.RunInput) (*model.RunResult, error) {
	zap.L().Info("pipeline run starting",
		zap.String("vendor", input.VendorDomain),
		zap.String("prospect", input.ProspectDomain))

	report, rs, runErr := p.exec.Run(ctx, input)

	result := &model.RunResult{
		Stages:   report.Outcomes,
		Warnings: report.Warnings,
		Duration: report.Duration.Milliseconds(),
	}
	result.TokenUsage, result.EstCostUSD = p.deps.usage.snapshot(p.deps.Config.Anthropic.Model)

	if report.Fatal != nil {
		result.FatalStage = report.Fatal.FailedStage
	}

	if pb, ok := rs.Get(StageAssemble); ok && pb.OK() {
		if playbook, isPB := pb.Value.(*model.Playbook); isPB {
			playbook.Warnings = report.Warnings
			result.Playbook = playbook
		}
	}

	if runErr != nil {
		zap.L().Error("pipeline run halted",
			zap.String("fatal_stage", result.FatalStage),
			zap.Error(runErr))
		return result, runErr
	}

	zap.L().Info("pipeline run complete",
		zap.Duration("duration", report.Duration),
		zap.Int("llm_calls", p.deps.usage.callCount()),
		zap.Int("warnings", len(report.Warnings)),
		zap.Float64("est_cost_usd", result.EstCostUSD))
	return result, nil
}
