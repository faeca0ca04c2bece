package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
)

// prospectContextGroup analyzes the prospect's scraped pages: who the company
// is, and what is hurting them.
func prospectContextGroup(d *Deps) *workflow.ParallelGroup {
	return &workflow.ParallelGroup{
		Name: GroupProspectContext,
		Members: []*workflow.Stage{
			analyzeCompanyStage(d),
			painPointsStage(d),
		},
	}
}

func analyzeCompanyStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageAnalyzeCompany,
		Needs: []string{StageBatchScrape},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			content, err := workflow.Need[model.ScrapedContent](rs, StageBatchScrape)
			if err != nil {
				return nil, err
			}

			pages := content.PagesFor(model.SideProspect)
			user := prospectCorpus(rs, pages)
			if user == "" {
				return nil, workflow.CollaboratorErr(
					StageAnalyzeCompany+": no prospect content available", nil)
			}

			text, err := d.complete(ctx, StageAnalyzeCompany, systemText(companyAnalystPrompt), user)
			if err != nil {
				return nil, err
			}
			reply, err := decodeReply[struct {
				Profile model.CompanyProfile `json:"company_profile"`
			}](StageAnalyzeCompany, text)
			if err != nil {
				return nil, err
			}
			if reply.Profile.CompanyName == "" {
				return nil, workflow.ShapeMismatchErr(
					StageAnalyzeCompany+": reply missing company name", nil)
			}

			zap.L().Info("prospect company analyzed",
				zap.String("company", reply.Profile.CompanyName))
			return reply.Profile, nil
		},
	}
}

func painPointsStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StagePainPoints,
		Needs: []string{StageBatchScrape},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			content, err := workflow.Need[model.ScrapedContent](rs, StageBatchScrape)
			if err != nil {
				return nil, err
			}

			pages := content.PagesFor(model.SideProspect)
			if len(pages) == 0 {
				zap.L().Info("no prospect pages, skipping pain point analysis")
				return []model.PainPoint{}, nil
			}

			text, err := d.complete(ctx, StagePainPoints, systemText(painPointPrompt), formatCorpus(pages))
			if err != nil {
				return nil, err
			}
			reply, err := decodeReply[struct {
				PainPoints []model.PainPoint `json:"pain_points"`
			}](StagePainPoints, text)
			if err != nil {
				return nil, err
			}

			zap.L().Info("pain points identified", zap.Int("count", len(reply.PainPoints)))
			return reply.PainPoints, nil
		},
	}
}

// prospectCorpus prefers the scraped deep pages; if the batch produced none,
// it falls back to the prospect homepage so the company analysis can still
// run.
func prospectCorpus(rs *workflow.ResultStore, pages map[string]model.PageText) string {
	if len(pages) > 0 {
		return formatCorpus(pages)
	}
	home := workflow.Optional[model.HomepageContent](rs, StageScrapeProspect)
	if home.Markdown == "" {
		return ""
	}
	return fmt.Sprintf("URL: %s\n\n%s", home.URL, home.Markdown)
}

// personasStage names the specific roles at the prospect worth pursuing.
// Persona matching, summary generation, and every component writer depend on
// this list, so it runs standalone and halts the run if it fails. The company
// profile is the preferred grounding, but when company analysis failed the
// stage can still work from the vendor's value propositions; it gives up only
// when both are missing.
func personasStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StagePersonas,
		Needs: []string{StageAnalyzeCompany},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			profile := workflow.Optional[model.CompanyProfile](rs, StageAnalyzeCompany)
			valueProps := workflow.Optional[[]model.ValueProposition](rs, "value_props")
			if profile.CompanyName == "" && len(valueProps) == 0 {
				return nil, workflow.NewStageError(workflow.KindMissingUpstream,
					"no company profile and no vendor value propositions to ground personas", nil)
			}
			painPoints := workflow.Optional[[]model.PainPoint](rs, StagePainPoints)
			icpPersonas := workflow.Optional[[]model.ICPPersona](rs, "icp_personas")

			text, err := d.complete(ctx, StagePersonas, systemText(personaPrompt),
				personaInput(profile, valueProps, painPoints, icpPersonas))
			if err != nil {
				return nil, err
			}
			reply, err := decodeReply[struct {
				BuyerPersonas []model.BuyerPersona `json:"buyer_personas"`
			}](StagePersonas, text)
			if err != nil {
				return nil, err
			}
			if len(reply.BuyerPersonas) == 0 {
				return nil, workflow.ShapeMismatchErr(
					StagePersonas+": model identified no personas", nil)
			}

			zap.L().Info("buyer personas identified",
				zap.String("company", profile.CompanyName),
				zap.Int("count", len(reply.BuyerPersonas)))
			return reply.BuyerPersonas, nil
		},
	}
}

func personaInput(profile model.CompanyProfile, valueProps []model.ValueProposition, painPoints []model.PainPoint, icp []model.ICPPersona) string {
	var b strings.Builder

	if profile.CompanyName != "" {
		fmt.Fprintf(&b, "## Prospect company\n%s (%s, %s): %s\n\n",
			profile.CompanyName, profile.Industry, profile.CompanySize, profile.WhatTheyDo)
	}

	if len(valueProps) > 0 {
		b.WriteString("## What the vendor sells\n")
		for _, v := range valueProps {
			fmt.Fprintf(&b, "- %s (typically bought by: %s)\n", v.Statement, v.TargetPersona)
		}
		b.WriteByte('\n')
	}

	if len(painPoints) > 0 {
		b.WriteString("## Observed pain points\n")
		for _, p := range painPoints {
			fmt.Fprintf(&b, "- [%s, %s confidence] %s\n", p.Category, p.Confidence, p.Description)
		}
		b.WriteByte('\n')
	}

	if len(icp) > 0 {
		b.WriteString("## Roles the vendor typically sells to\n")
		for _, p := range icp {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Title, p.Department)
		}
	}

	return b.String()
}

const companyAnalystPrompt = `You are a B2B sales researcher. Read the prospect company's pages and profile the company.

Respond with a JSON object:
{
  "company_profile": {
    "company_name": "...",
    "industry": "...",
    "company_size": "startup|smb|mid_market|enterprise",
    "what_they_do": "...",
    "target_market": "...",
    "sources": [{"url": "...", "page_type": "..."}]
  }
}

Respond with JSON only.`

const painPointPrompt = `You are a B2B sales researcher. From the prospect company's own pages, infer the business challenges they are likely facing. Ground every pain point in something the pages actually say, and quote that evidence.

Respond with a JSON object:
{
  "pain_points": [
    {
      "description": "...",
      "category": "operational|strategic|technical|market|growth",
      "evidence": "quote or paraphrase from their pages",
      "affected_personas": ["..."],
      "confidence": "high|medium|low",
      "sources": [{"url": "...", "page_type": "..."}]
    }
  ]
}

Respond with JSON only.`

const personaPrompt = `You are a B2B sales strategist. Given a prospect company profile, their observed pain points, and the roles the vendor typically sells to, identify the specific buying-committee roles at this prospect worth pursuing. These are roles at the prospect company, not generic archetypes.

Score each persona's priority from 1 to 10, 10 for the most likely champion or economic buyer.

Respond with a JSON object:
{
  "buyer_personas": [
    {
      "persona_title": "...",
      "department": "...",
      "why_they_care": "...",
      "pain_points": ["..."],
      "goals": ["..."],
      "suggested_talking_points": ["..."],
      "priority_score": 1
    }
  ]
}

Order by priority_score descending. Respond with JSON only.`
