// Package artifact writes run output to a timestamped directory so each
// playbook run leaves a self-contained, inspectable folder on disk.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

// Writer lays out run artifacts under a base output directory.
type Writer struct {
	baseDir string
	clock   func() time.Time
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, clock: time.Now}
}

// Save writes the run's artifacts and returns the run directory path.
//
// Layout:
//
//	<base>/<timestamp>_<vendor>_<prospect>/
//	  playbook.json
//	  metadata.json
//	  research/vendor/{offerings,customer_evidence,positioning,personas,use_cases}.json
//	  research/prospect/analysis.json
func (w *Writer) Save(input model.RunInput, result *model.RunResult) (string, error) {
	dir := filepath.Join(w.baseDir, w.runDirName(input))
	if err := os.MkdirAll(filepath.Join(dir, "research", "vendor"), 0o755); err != nil {
		return "", eris.Wrap(err, "artifact: create run dir")
	}
	if err := os.MkdirAll(filepath.Join(dir, "research", "prospect"), 0o755); err != nil {
		return "", eris.Wrap(err, "artifact: create research dir")
	}

	if result.Playbook != nil {
		if err := writeJSON(filepath.Join(dir, "playbook.json"), result.Playbook); err != nil {
			return "", err
		}
		if err := writeVendorResearch(filepath.Join(dir, "research", "vendor"),
			result.Playbook.VendorIntelligence); err != nil {
			return "", err
		}
		if err := writeJSON(filepath.Join(dir, "research", "prospect", "analysis.json"),
			result.Playbook.ProspectIntelligence); err != nil {
			return "", err
		}
	}

	meta := metadata{
		VendorDomain:   input.VendorDomain,
		ProspectDomain: input.ProspectDomain,
		GeneratedAt:    w.clock().UTC().Format(time.RFC3339),
		DurationMS:     result.Duration,
		Stages:         result.Stages,
		Warnings:       result.Warnings,
		FatalStage:     result.FatalStage,
		TokenUsage:     result.TokenUsage,
		EstCostUSD:     result.EstCostUSD,
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return "", err
	}

	zap.L().Info("artifacts written", zap.String("dir", dir))
	return dir, nil
}

// writeVendorResearch splits vendor intelligence into one document per
// research category.
func writeVendorResearch(dir string, vi model.VendorIntelligence) error {
	docs := map[string]any{
		"offerings.json": map[string]any{
			"offerings": vi.Offerings,
		},
		"customer_evidence.json": map[string]any{
			"case_studies":        vi.CaseStudies,
			"proof_points":        vi.ProofPoints,
			"reference_customers": vi.ReferenceCustomers,
		},
		"positioning.json": map[string]any{
			"value_propositions": vi.ValuePropositions,
			"differentiators":    vi.Differentiators,
		},
		"personas.json": map[string]any{
			"icp_personas": vi.ICPPersonas,
		},
		"use_cases.json": map[string]any{
			"use_cases": vi.UseCases,
		},
	}
	for name, doc := range docs {
		if err := writeJSON(filepath.Join(dir, name), doc); err != nil {
			return err
		}
	}
	return nil
}

type metadata struct {
	VendorDomain   string               `json:"vendor_domain"`
	ProspectDomain string               `json:"prospect_domain"`
	GeneratedAt    string               `json:"generated_at"`
	DurationMS     int64                `json:"duration_ms"`
	Stages         []model.StageOutcome `json:"stages"`
	Warnings       []string             `json:"warnings,omitempty"`
	FatalStage     string               `json:"fatal_stage,omitempty"`
	TokenUsage     model.TokenUsage     `json:"token_usage"`
	EstCostUSD     float64              `json:"est_cost_usd"`
}

func (w *Writer) runDirName(input model.RunInput) string {
	ts := w.clock().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s_%s_%s", ts,
		model.Hostname(input.VendorDomain), model.Hostname(input.ProspectDomain))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "artifact: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "artifact: write %s", filepath.Base(path))
	}
	return nil
}
