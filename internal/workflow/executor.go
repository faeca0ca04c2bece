package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

// Executor walks an ordered list of units, executing each in turn and
// populating a run-scoped ResultStore. Standalone stages run sequentially;
// a ParallelGroup's members run concurrently and the executor blocks until
// every member reaches a terminal state.
//
// Failure contract: a group member's failure degrades only its own
// dependents. A standalone stage's failure halts the run only when a later
// unit declares that stage in Needs — a required input that can never
// arrive. Everything else proceeds best-effort.
type Executor struct {
	units []Unit
}

// NewExecutor validates the pipeline definition and builds an executor.
// Duplicate stage or group names anywhere in the list are rejected here so
// concurrent members can never collide on a ResultStore key at run time.
func NewExecutor(units ...Unit) (*Executor, error) {
	seen := map[string]bool{InputKey: true}
	for _, u := range units {
		for _, name := range u.stageNames() {
			if name == "" {
				return nil, eris.New("workflow: unit with empty name")
			}
			if seen[name] {
				return nil, eris.Errorf("workflow: duplicate stage name %q", name)
			}
			seen[name] = true
		}
	}
	return &Executor{units: units}, nil
}

// RunReport is the executor's account of one run.
type RunReport struct {
	Outcomes []model.StageOutcome
	Warnings []string
	Fatal    *FatalError
	Duration time.Duration
}

// Failed reports whether the run ended in a fatal halt.
func (r *RunReport) Failed() bool {
	return r.Fatal != nil
}

// Run executes the pipeline once. The input value is seeded into the store
// under InputKey before the first unit executes. The returned store holds
// every terminal stage result for projection into artifacts; the report
// records per-stage outcomes in declaration order.
//
// Run returns a non-nil report even on fatal failure; the error is non-nil
// only for a fatal halt or caller cancellation.
func (e *Executor) Run(ctx context.Context, input any) (*RunReport, *ResultStore, error) {
	start := time.Now()
	rs := NewResultStore()
	report := &RunReport{}

	if err := rs.Put(InputKey, Success(input)); err != nil {
		return report, rs, err
	}

	for i, unit := range e.units {
		if err := ctx.Err(); err != nil {
			report.Fatal = &FatalError{FailedStage: unit.UnitName(), Reason: err}
			report.Duration = time.Since(start)
			return report, rs, eris.Wrap(err, "workflow: run canceled")
		}

		switch u := unit.(type) {
		case *Stage:
			outcome := e.runStage(ctx, u, rs, "")
			report.Outcomes = append(report.Outcomes, outcome)

			if outcome.Status == model.StageStatusFailed {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("%s: %s", u.Name, outcome.Error))
				if dependent := e.laterDependent(i, u.Name); dependent != "" {
					result, _ := rs.Get(u.Name)
					report.Fatal = &FatalError{FailedStage: u.Name, Reason: result.Err}
					report.Duration = time.Since(start)
					zap.L().Error("workflow: fatal failure, halting run",
						zap.String("stage", u.Name),
						zap.String("blocked_dependent", dependent),
						zap.Error(result.Err),
					)
					return report, rs, report.Fatal
				}
			}

		case *ParallelGroup:
			outcomes := e.runGroup(ctx, u, rs)
			report.Outcomes = append(report.Outcomes, outcomes...)
			for _, o := range outcomes {
				if o.Status == model.StageStatusFailed {
					report.Warnings = append(report.Warnings,
						fmt.Sprintf("%s/%s: %s", u.Name, o.Name, o.Error))
				}
			}

		default:
			return report, rs, eris.Errorf("workflow: unknown unit type %T", unit)
		}
	}

	report.Duration = time.Since(start)
	return report, rs, nil
}

// runStage executes one stage with panic containment and records its result.
func (e *Executor) runStage(ctx context.Context, s *Stage, rs *ResultStore, group string) model.StageOutcome {
	log := zap.L().With(zap.String("stage", s.Name))
	if group != "" {
		log = log.With(zap.String("group", group))
	}
	log.Info("workflow: stage starting")

	start := time.Now()
	value, err := e.compute(ctx, s, rs)
	duration := time.Since(start).Milliseconds()

	outcome := model.StageOutcome{Name: s.Name, Group: group, Duration: duration}

	var result StageResult
	if err != nil {
		result = Failure(err)
		outcome.Status = model.StageStatusFailed
		outcome.Error = err.Error()
		log.Warn("workflow: stage failed",
			zap.Int64("duration_ms", duration),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
	} else {
		result = Success(value)
		outcome.Status = model.StageStatusSuccess
		log.Info("workflow: stage complete", zap.Int64("duration_ms", duration))
	}

	var putErr error
	if group != "" {
		putErr = rs.PutChild(group, s.Name, result)
	} else {
		putErr = rs.Put(s.Name, result)
	}
	if putErr != nil {
		// Unreachable when construction-time name validation passed.
		log.Error("workflow: result write rejected", zap.Error(putErr))
		outcome.Status = model.StageStatusFailed
		outcome.Error = putErr.Error()
	}

	return outcome
}

// compute invokes a stage's Compute with panic recovery so one member's
// crash can never corrupt or abort its siblings.
func (e *Executor) compute(ctx context.Context, s *Stage, rs *ResultStore) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("workflow: stage %s panicked: %v", s.Name, r)
		}
	}()
	return s.Compute(ctx, rs)
}

// runGroup fans out all members concurrently and waits for every member's
// terminal state. No sibling is canceled when another fails.
func (e *Executor) runGroup(ctx context.Context, g *ParallelGroup, rs *ResultStore) []model.StageOutcome {
	zap.L().Info("workflow: group starting",
		zap.String("group", g.Name),
		zap.Int("members", len(g.Members)),
	)

	outcomes := make([]model.StageOutcome, len(g.Members))

	// Plain errgroup without WithContext: member errors are captured in
	// outcomes, and fan-out must be wait-all, not fail-fast.
	var eg errgroup.Group
	for i, member := range g.Members {
		eg.Go(func() error {
			outcomes[i] = e.runStage(ctx, member, rs, g.Name)
			return nil
		})
	}
	_ = eg.Wait()

	succeeded := 0
	for _, o := range outcomes {
		if o.Status == model.StageStatusSuccess {
			succeeded++
		}
	}
	zap.L().Info("workflow: group complete",
		zap.String("group", g.Name),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(g.Members)-succeeded),
	)

	return outcomes
}

// laterDependent returns the name of the first unit after index i that
// declares stageName as a dependency, or "" when nothing downstream needs it.
func (e *Executor) laterDependent(i int, stageName string) string {
	for _, unit := range e.units[i+1:] {
		switch u := unit.(type) {
		case *Stage:
			if needs(u, stageName) {
				return u.Name
			}
		case *ParallelGroup:
			for _, m := range u.Members {
				if needs(m, stageName) {
					return u.Name + "/" + m.Name
				}
			}
		}
	}
	return ""
}

func needs(s *Stage, name string) bool {
	for _, n := range s.Needs {
		if n == name {
			return true
		}
	}
	return false
}
