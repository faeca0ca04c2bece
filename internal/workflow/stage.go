package workflow

import "context"

// ComputeFunc is one stage's unit of work. It reads prior results from the
// store and returns the stage's value. Errors are caught at the stage
// boundary and recorded as a Failure; they never escape to siblings.
type ComputeFunc func(ctx context.Context, rs *ResultStore) (any, error)

// Stage is a named unit of pipeline work.
type Stage struct {
	// Name keys the stage's result in the ResultStore. Unique per pipeline.
	Name string

	// Needs declares the stage names whose results this stage reads. The
	// engine uses Needs for the halt policy: a fatal halt occurs only when
	// a failed standalone stage is needed by a later unit. Compute has read
	// access to the whole store regardless; an undeclared read of an
	// absent result simply yields the absent branch.
	Needs []string

	// Compute performs the work. May block on fetch/LLM calls; must honor
	// ctx cancellation.
	Compute ComputeFunc
}

// Unit is one entry in the executor's ordered list: a Stage or a
// ParallelGroup.
type Unit interface {
	UnitName() string
	stageNames() []string
}

// UnitName implements Unit.
func (s *Stage) UnitName() string { return s.Name }

func (s *Stage) stageNames() []string { return []string{s.Name} }

// ParallelGroup executes its members concurrently and waits for every
// member to reach a terminal state before the pipeline advances. Members
// must be mutually independent; the engine does not verify that, but it
// does reject duplicate member names at construction. Members are always
// leaf stages: groups do not nest.
type ParallelGroup struct {
	Name    string
	Members []*Stage
}

// UnitName implements Unit.
func (g *ParallelGroup) UnitName() string { return g.Name }

func (g *ParallelGroup) stageNames() []string {
	names := []string{g.Name}
	for _, m := range g.Members {
		names = append(names, m.Name)
	}
	return names
}
