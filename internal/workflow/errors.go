package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies stage failures so callers can tell a collaborator
// outage apart from a pipeline wiring bug.
type ErrorKind string

const (
	// KindInputValidation: malformed run input; surfaced before any network call.
	KindInputValidation ErrorKind = "input_validation"
	// KindCollaborator: the fetcher or LLM collaborator failed (timeout,
	// non-2xx, empty content).
	KindCollaborator ErrorKind = "collaborator"
	// KindShapeMismatch: the LLM returned a value that cannot be coerced to
	// the stage's expected output schema.
	KindShapeMismatch ErrorKind = "shape_mismatch"
	// KindMissingUpstream: a required prior result is absent or failed.
	KindMissingUpstream ErrorKind = "missing_upstream"
	// KindFatal: a failure the run cannot meaningfully continue past.
	KindFatal ErrorKind = "fatal"
)

// StageError is a classified stage failure.
type StageError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError builds a classified error wrapping an underlying cause.
func NewStageError(kind ErrorKind, msg string, err error) *StageError {
	return &StageError{Kind: kind, Msg: msg, Err: err}
}

// CollaboratorErr marks err as a collaborator failure.
func CollaboratorErr(msg string, err error) *StageError {
	return NewStageError(KindCollaborator, msg, err)
}

// ShapeMismatchErr marks err as a schema-coercion failure.
func ShapeMismatchErr(msg string, err error) *StageError {
	return NewStageError(KindShapeMismatch, msg, err)
}

// MissingUpstreamErr reports a required prior stage result that was absent
// or failed. Distinct from collaborator errors so wiring bugs are
// diagnosable separately.
func MissingUpstreamErr(stage string) *StageError {
	return &StageError{Kind: KindMissingUpstream, Msg: fmt.Sprintf("required result %q is absent or failed", stage)}
}

// KindOf returns the classified kind of err, or KindCollaborator for
// unclassified errors (the conservative default for anything thrown out of
// a stage body).
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindCollaborator
}

// FatalError halts the whole run. FailedStage names the stage whose failure
// made continuing meaningless.
type FatalError struct {
	FailedStage string
	Reason      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("pipeline halted: required stage %q failed: %v", e.FailedStage, e.Reason)
}

func (e *FatalError) Unwrap() error {
	return e.Reason
}
