package model

import "time"

// RunStatus tracks a playbook run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusMapping    RunStatus = "mapping"
	RunStatusScraping   RunStatus = "scraping"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusGenerating RunStatus = "generating"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one persisted pipeline execution.
type Run struct {
	ID        string     `json:"id"`
	Input     RunInput   `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StageStatus is the terminal state of one stage within a run.
type StageStatus string

const (
	StageStatusSuccess StageStatus = "success"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// StageOutcome records one stage's terminal state for the run report.
type StageOutcome struct {
	Name     string      `json:"name"`
	Group    string      `json:"group,omitempty"`
	Status   StageStatus `json:"status"`
	Error    string      `json:"error,omitempty"`
	Duration int64       `json:"duration_ms"`
}

// TokenUsage aggregates LLM token consumption across a run.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add accumulates another usage sample.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// RunResult is the persisted outcome of a completed (or fatally failed) run.
type RunResult struct {
	Playbook     *Playbook      `json:"playbook,omitempty"`
	Stages       []StageOutcome `json:"stages"`
	Warnings     []string       `json:"warnings,omitempty"`
	FatalStage   string         `json:"fatal_stage,omitempty"`
	Duration     int64          `json:"duration_ms"`
	TokenUsage   TokenUsage     `json:"token_usage"`
	EstCostUSD   float64        `json:"est_cost_usd"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
}
