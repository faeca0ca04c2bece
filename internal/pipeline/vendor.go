package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/registry"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
	"github.com/orchidautomation/playbook-cli/pkg/anthropic"
)

// vendorExtractionGroup fans out one specialist stage per GTM element type.
// All specialists read the same scraped vendor corpus, so it is rendered
// once, cached server-side, and shared across the fan-out.
func vendorExtractionGroup(d *Deps) *workflow.ParallelGroup {
	shared := &sharedCorpus{d: d}
	members := make([]*workflow.Stage, 0, len(d.Registry.Specialists))
	for _, sp := range d.Registry.Specialists {
		members = append(members, specialistStage(d, shared, sp))
	}
	return &workflow.ParallelGroup{Name: GroupVendorExtract, Members: members}
}

// sharedCorpus lazily builds the cached system blocks for the vendor corpus
// and primes the prompt cache exactly once, from whichever specialist runs
// first.
type sharedCorpus struct {
	d      *Deps
	once   sync.Once
	blocks []anthropic.SystemBlock
}

func (s *sharedCorpus) systemBlocks(ctx context.Context, pages map[string]model.PageText) []anthropic.SystemBlock {
	s.once.Do(func() {
		s.blocks = anthropic.BuildCachedSystemBlocks(
			vendorCorpusPreamble + "\n\n" + formatCorpus(pages))
		s.d.warmCache(ctx, s.blocks)
	})
	return s.blocks
}

func specialistStage(d *Deps, shared *sharedCorpus, sp registry.Specialist) *workflow.Stage {
	return &workflow.Stage{
		Name:  sp.Name,
		Needs: []string{StageBatchScrape},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			content, err := workflow.Need[model.ScrapedContent](rs, StageBatchScrape)
			if err != nil {
				return nil, err
			}

			pages := content.PagesFor(model.SideVendor)
			if len(pages) == 0 {
				zap.L().Info("no vendor pages, skipping extraction",
					zap.String("specialist", sp.Name))
				return emptySpecialistResult(sp)
			}

			system := shared.systemBlocks(ctx, pages)
			text, err := d.complete(ctx, sp.Name, system, sp.Prompt())
			if err != nil {
				return nil, err
			}
			return decodeSpecialistReply(sp, text)
		},
	}
}

// decodeSpecialistReply parses one specialist's reply into its typed element
// slice, keyed by the specialist's result field.
func decodeSpecialistReply(sp registry.Specialist, text string) (any, error) {
	switch sp.ResultField {
	case "offerings":
		out, err := decodeReply[struct {
			Items []model.Offering `json:"offerings"`
		}](sp.Name, text)
		return out.Items, err
	case "case_studies":
		out, err := decodeReply[struct {
			Items []model.CaseStudy `json:"case_studies"`
		}](sp.Name, text)
		return out.Items, err
	case "proof_points":
		out, err := decodeReply[struct {
			Items []model.ProofPoint `json:"proof_points"`
		}](sp.Name, text)
		return out.Items, err
	case "value_propositions":
		out, err := decodeReply[struct {
			Items []model.ValueProposition `json:"value_propositions"`
		}](sp.Name, text)
		return out.Items, err
	case "reference_customers":
		out, err := decodeReply[struct {
			Items []model.ReferenceCustomer `json:"reference_customers"`
		}](sp.Name, text)
		return out.Items, err
	case "use_cases":
		out, err := decodeReply[struct {
			Items []model.UseCase `json:"use_cases"`
		}](sp.Name, text)
		return out.Items, err
	case "icp_personas":
		out, err := decodeReply[struct {
			Items []model.ICPPersona `json:"icp_personas"`
		}](sp.Name, text)
		return out.Items, err
	case "differentiators":
		out, err := decodeReply[struct {
			Items []model.Differentiator `json:"differentiators"`
		}](sp.Name, text)
		return out.Items, err
	}
	return nil, workflow.ShapeMismatchErr(sp.Name+": unknown result field "+sp.ResultField, nil)
}

// emptySpecialistResult is the typed zero result for a specialist that had
// nothing to read.
func emptySpecialistResult(sp registry.Specialist) (any, error) {
	switch sp.ResultField {
	case "offerings":
		return []model.Offering{}, nil
	case "case_studies":
		return []model.CaseStudy{}, nil
	case "proof_points":
		return []model.ProofPoint{}, nil
	case "value_propositions":
		return []model.ValueProposition{}, nil
	case "reference_customers":
		return []model.ReferenceCustomer{}, nil
	case "use_cases":
		return []model.UseCase{}, nil
	case "icp_personas":
		return []model.ICPPersona{}, nil
	case "differentiators":
		return []model.Differentiator{}, nil
	}
	return nil, workflow.ShapeMismatchErr(sp.Name+": unknown result field "+sp.ResultField, nil)
}

// collectVendorIntelligence merges whatever specialist results landed in the
// store. Failed or absent specialists contribute an empty slice, keeping the
// playbook a best-effort artifact.
func collectVendorIntelligence(rs *workflow.ResultStore) model.VendorIntelligence {
	return model.VendorIntelligence{
		Offerings:          workflow.Optional[[]model.Offering](rs, "offerings"),
		CaseStudies:        workflow.Optional[[]model.CaseStudy](rs, "case_studies"),
		ProofPoints:        workflow.Optional[[]model.ProofPoint](rs, "proof_points"),
		ValuePropositions:  workflow.Optional[[]model.ValueProposition](rs, "value_props"),
		ReferenceCustomers: workflow.Optional[[]model.ReferenceCustomer](rs, "customers"),
		UseCases:           workflow.Optional[[]model.UseCase](rs, "use_cases"),
		ICPPersonas:        workflow.Optional[[]model.ICPPersona](rs, "icp_personas"),
		Differentiators:    workflow.Optional[[]model.Differentiator](rs, "differentiators"),
	}
}

const vendorCorpusPreamble = `You are a B2B go-to-market analyst. Below are scraped pages from a vendor's website. Answer extraction requests using only this material, and cite the source URL of each extracted element in its "sources" array.`
