package workflow

import (
	"sync"

	"github.com/rotisserie/eris"
)

// InputKey is the reserved ResultStore key holding the run's seed input.
const InputKey = "input"

// StageResult is a terminal stage outcome: either a value or an error,
// never both. Immutable once written to the store.
type StageResult struct {
	Value any
	Err   error
}

// Success builds a successful result.
func Success(value any) StageResult {
	return StageResult{Value: value}
}

// Failure builds a failed result.
func Failure(err error) StageResult {
	return StageResult{Err: err}
}

// OK reports whether the result carries a value.
func (r StageResult) OK() bool {
	return r.Err == nil
}

// ResultStore maps stage names to results for one pipeline run. Writes are
// append-only: a second write to the same name is a pipeline-definition bug
// and is rejected. Group member results are additionally addressable via
// Child without the caller knowing the group's layout.
//
// Concurrent group members write disjoint keys by construction (the executor
// rejects duplicate names at build time), so a single coarse lock suffices.
type ResultStore struct {
	mu       sync.RWMutex
	results  map[string]StageResult
	children map[string]map[string]StageResult
}

// NewResultStore creates an empty store for one run.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results:  make(map[string]StageResult),
		children: make(map[string]map[string]StageResult),
	}
}

// Put writes a stage result exactly once.
func (s *ResultStore) Put(name string, result StageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[name]; exists {
		return eris.Errorf("workflow: duplicate write to stage result %q", name)
	}
	s.results[name] = result
	return nil
}

// PutChild records a group member's result under the group's child map and
// as a top-level entry under the member's own name.
func (s *ResultStore) PutChild(group, child string, result StageResult) error {
	if err := s.Put(child, result); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.children[group]
	if !ok {
		m = make(map[string]StageResult)
		s.children[group] = m
	}
	if _, exists := m[child]; exists {
		return eris.Errorf("workflow: duplicate write to %s/%s", group, child)
	}
	m[child] = result
	return nil
}

// Get returns the result for a stage. Absence means the stage has not run
// yet or was skipped after an upstream fatal failure.
func (s *ResultStore) Get(name string) (StageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[name]
	return r, ok
}

// Child addresses a member result inside a parallel group.
func (s *ResultStore) Child(group, child string) (StageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.children[group]
	if !ok {
		return StageResult{}, false
	}
	r, ok := m[child]
	return r, ok
}

// Group returns a copy of a parallel group's child-name → result mapping.
func (s *ResultStore) Group(name string) (map[string]StageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.children[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]StageResult, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}

// Names returns every stage name with a recorded result.
func (s *ResultStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.results))
	for k := range s.results {
		out = append(out, k)
	}
	return out
}

// Need returns the value of a required upstream stage coerced to T. An
// absent or failed upstream, or a value of the wrong type, yields a
// MissingUpstream error — the caller's own input-validation failure, never
// a crash.
func Need[T any](s *ResultStore, name string) (T, error) {
	var zero T
	r, ok := s.Get(name)
	if !ok || !r.OK() {
		return zero, MissingUpstreamErr(name)
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, MissingUpstreamErr(name)
	}
	return v, nil
}

// Optional returns the value of an upstream stage, or T's zero value when
// the stage is absent, failed, or of the wrong type. Used by stages that
// degrade gracefully on missing enrichment inputs.
func Optional[T any](s *ResultStore, name string) T {
	v, err := Need[T](s, name)
	if err != nil {
		var zero T
		return zero
	}
	return v
}
