package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/persona"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
)

// summaryStage produces the strategic layer: executive summary, the persona
// priority ordering the component writers work from, quick wins, and success
// metrics. Every component writer needs its output, so a failure halts.
func summaryStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageSummary,
		Needs: []string{StagePersonas, StageAnalyzeCompany},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			personas, err := workflow.Need[[]model.BuyerPersona](rs, StagePersonas)
			if err != nil {
				return nil, err
			}
			profile, err := workflow.Need[model.CompanyProfile](rs, StageAnalyzeCompany)
			if err != nil {
				return nil, err
			}
			vendor := collectVendorIntelligence(rs)
			painPoints := workflow.Optional[[]model.PainPoint](rs, StagePainPoints)

			text, err := d.complete(ctx, StageSummary, systemText(summaryPrompt),
				summaryInput(profile, personas, painPoints, vendor))
			if err != nil {
				return nil, err
			}
			summary, err := decodeReply[model.PlaybookSummary](StageSummary, text)
			if err != nil {
				return nil, err
			}
			if len(summary.PriorityPersonas) == 0 {
				summary.PriorityPersonas = rankedTitles(personas)
			}

			zap.L().Info("playbook summary generated",
				zap.Strings("priority_personas", summary.PriorityPersonas))
			return summary, nil
		},
	}
}

// componentsGroup writes the three playbook deliverables in parallel. Each
// member degrades independently; a failed writer costs its section, not the
// playbook.
func componentsGroup(d *Deps) *workflow.ParallelGroup {
	return &workflow.ParallelGroup{
		Name: GroupComponents,
		Members: []*workflow.Stage{
			emailSequencesStage(d),
			talkTracksStage(d),
			battleCardsStage(d),
		},
	}
}

func emailSequencesStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageEmailSequences,
		Needs: []string{StageSummary, StagePersonas},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			targets, err := d.targetPersonas(rs)
			if err != nil {
				return nil, err
			}
			vendor := collectVendorIntelligence(rs)
			profile := workflow.Optional[model.CompanyProfile](rs, StageAnalyzeCompany)

			sequences := make([]model.EmailSequence, 0, len(targets))
			for _, p := range targets {
				text, err := d.complete(ctx, StageEmailSequences, systemText(emailSequencePrompt),
					componentInput(profile, p, vendor))
				if err != nil {
					return nil, err
				}
				reply, err := decodeReply[struct {
					Sequence model.EmailSequence `json:"email_sequence"`
				}](StageEmailSequences, text)
				if err != nil {
					return nil, err
				}
				seq := reply.Sequence
				seq.PersonaTitle = p.Title
				if seq.TotalDays == 0 {
					seq.TotalDays = 14
				}
				sequences = append(sequences, seq)
			}
			return sequences, nil
		},
	}
}

func talkTracksStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageTalkTracks,
		Needs: []string{StageSummary, StagePersonas},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			targets, err := d.targetPersonas(rs)
			if err != nil {
				return nil, err
			}
			vendor := collectVendorIntelligence(rs)
			profile := workflow.Optional[model.CompanyProfile](rs, StageAnalyzeCompany)

			tracks := make([]model.TalkTrack, 0, len(targets))
			for _, p := range targets {
				text, err := d.complete(ctx, StageTalkTracks, systemText(talkTrackPrompt),
					componentInput(profile, p, vendor))
				if err != nil {
					return nil, err
				}
				reply, err := decodeReply[struct {
					TalkTrack model.TalkTrack `json:"talk_track"`
				}](StageTalkTracks, text)
				if err != nil {
					return nil, err
				}
				track := reply.TalkTrack
				track.PersonaTitle = p.Title
				tracks = append(tracks, track)
			}
			return tracks, nil
		},
	}
}

func battleCardsStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageBattleCards,
		Needs: []string{StageSummary},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			summary, err := workflow.Need[model.PlaybookSummary](rs, StageSummary)
			if err != nil {
				return nil, err
			}
			vendor := collectVendorIntelligence(rs)
			painPoints := workflow.Optional[[]model.PainPoint](rs, StagePainPoints)

			text, err := d.complete(ctx, StageBattleCards, systemText(battleCardPrompt),
				battleCardInput(summary, vendor, painPoints))
			if err != nil {
				return nil, err
			}
			reply, err := decodeReply[struct {
				BattleCards []model.BattleCard `json:"battle_cards"`
			}](StageBattleCards, text)
			if err != nil {
				return nil, err
			}
			return reply.BattleCards, nil
		},
	}
}

// assembleStage folds every produced section into the final playbook. It
// requires only the summary; missing sections leave their slices empty.
func assembleStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageAssemble,
		Needs: []string{StageSummary},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			summary, err := workflow.Need[model.PlaybookSummary](rs, StageSummary)
			if err != nil {
				return nil, err
			}
			input, err := workflow.Need[model.RunInput](rs, workflow.InputKey)
			if err != nil {
				return nil, err
			}

			vendor := collectVendorIntelligence(rs)
			profile := workflow.Optional[model.CompanyProfile](rs, StageAnalyzeCompany)
			prospectName := profile.CompanyName
			if prospectName == "" {
				prospectName = model.Hostname(input.ProspectDomain)
			}

			pb := &model.Playbook{
				VendorName:    vendor.VendorName(model.Hostname(input.VendorDomain)),
				ProspectName:  prospectName,
				GeneratedDate: d.now().Format("2006-01-02"),

				ExecutiveSummary: summary.ExecutiveSummary,
				PriorityPersonas: summary.PriorityPersonas,
				QuickWins:        summary.QuickWins,
				SuccessMetrics:   summary.SuccessMetrics,

				EmailSequences: workflow.Optional[[]model.EmailSequence](rs, StageEmailSequences),
				TalkTracks:     workflow.Optional[[]model.TalkTrack](rs, StageTalkTracks),
				BattleCards:    workflow.Optional[[]model.BattleCard](rs, StageBattleCards),

				VendorIntelligence: vendor,
				ProspectIntelligence: model.ProspectIntelligence{
					CompanyProfile: profile,
					PainPoints:     workflow.Optional[[]model.PainPoint](rs, StagePainPoints),
					BuyerPersonas:  workflow.Optional[[]model.BuyerPersona](rs, StagePersonas),
				},
			}

			zap.L().Info("playbook assembled",
				zap.String("vendor", pb.VendorName),
				zap.String("prospect", pb.ProspectName),
				zap.Int("email_sequences", len(pb.EmailSequences)),
				zap.Int("talk_tracks", len(pb.TalkTracks)),
				zap.Int("battle_cards", len(pb.BattleCards)))
			return pb, nil
		},
	}
}

// targetPersonas resolves the summary's priority titles against the
// identified personas and returns the top matches. Titles that match nothing
// are logged and skipped.
func (d *Deps) targetPersonas(rs *workflow.ResultStore) ([]model.BuyerPersona, error) {
	summary, err := workflow.Need[model.PlaybookSummary](rs, StageSummary)
	if err != nil {
		return nil, err
	}
	personas, err := workflow.Need[[]model.BuyerPersona](rs, StagePersonas)
	if err != nil {
		return nil, err
	}

	titles := summary.PriorityPersonas
	if len(titles) == 0 {
		titles = rankedTitles(personas)
	}
	top := d.Config.Pipeline.TopPersonas
	if top > 0 && len(titles) > top {
		titles = titles[:top]
	}

	resolver := persona.NewResolver(d.Config.Pipeline.PersonaMatchThreshold)
	seen := make(map[string]bool)
	targets := make([]model.BuyerPersona, 0, len(titles))
	for _, title := range titles {
		match, score, ok := resolver.Resolve(title, personas)
		if !ok {
			zap.L().Warn("priority persona matched no identified persona",
				zap.String("title", title))
			continue
		}
		if seen[match.Title] {
			continue
		}
		seen[match.Title] = true
		zap.L().Debug("persona resolved",
			zap.String("title", title),
			zap.String("matched", match.Title),
			zap.Float64("score", score))
		targets = append(targets, match)
	}
	return targets, nil
}

// rankedTitles orders persona titles by priority score, highest first.
func rankedTitles(personas []model.BuyerPersona) []string {
	sorted := make([]model.BuyerPersona, len(personas))
	copy(sorted, personas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})
	titles := make([]string, 0, len(sorted))
	for _, p := range sorted {
		titles = append(titles, p.Title)
	}
	return titles
}

func summaryInput(profile model.CompanyProfile, personas []model.BuyerPersona, painPoints []model.PainPoint, vendor model.VendorIntelligence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Prospect\n%s (%s): %s\n\n", profile.CompanyName, profile.Industry, profile.WhatTheyDo)

	b.WriteString("## Identified buyer personas\n")
	for _, p := range personas {
		fmt.Fprintf(&b, "- %s (priority %d): %s\n", p.Title, p.PriorityScore, p.WhyTheyCare)
	}
	b.WriteByte('\n')

	if len(painPoints) > 0 {
		b.WriteString("## Prospect pain points\n")
		for _, p := range painPoints {
			fmt.Fprintf(&b, "- [%s] %s\n", p.Category, p.Description)
		}
		b.WriteByte('\n')
	}

	b.WriteString("## Vendor capabilities\n")
	for _, o := range vendor.Offerings {
		fmt.Fprintf(&b, "- Offering: %s: %s\n", o.Name, o.Description)
	}
	for _, v := range vendor.ValuePropositions {
		fmt.Fprintf(&b, "- Value prop: %s\n", v.Statement)
	}
	for _, df := range vendor.Differentiators {
		fmt.Fprintf(&b, "- Differentiator: %s\n", df.Statement)
	}

	return b.String()
}

func componentInput(profile model.CompanyProfile, p model.BuyerPersona, vendor model.VendorIntelligence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Target persona at %s\n", profile.CompanyName)
	fmt.Fprintf(&b, "%s (%s). Why they care: %s\n", p.Title, p.Department, p.WhyTheyCare)
	if len(p.PainPoints) > 0 {
		fmt.Fprintf(&b, "Their pains: %s\n", strings.Join(p.PainPoints, "; "))
	}
	if len(p.SuggestedTalkingPoints) > 0 {
		fmt.Fprintf(&b, "Talking points: %s\n", strings.Join(p.SuggestedTalkingPoints, "; "))
	}
	b.WriteByte('\n')

	b.WriteString("## Vendor material\n")
	for _, o := range vendor.Offerings {
		fmt.Fprintf(&b, "- Offering: %s: %s\n", o.Name, o.Description)
	}
	for _, v := range vendor.ValuePropositions {
		fmt.Fprintf(&b, "- Value prop: %s\n", v.Statement)
	}
	for _, cs := range vendor.CaseStudies {
		fmt.Fprintf(&b, "- Case study: %s (%s): %s\n", cs.CustomerName, cs.Industry, cs.Solution)
	}
	for _, pp := range vendor.ProofPoints {
		fmt.Fprintf(&b, "- Proof point (%s): %s\n", pp.Type, pp.Content)
	}

	return b.String()
}

func battleCardInput(summary model.PlaybookSummary, vendor model.VendorIntelligence, painPoints []model.PainPoint) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Deal context\n%s\n\n", summary.ExecutiveSummary)

	b.WriteString("## Vendor differentiators\n")
	for _, df := range vendor.Differentiators {
		fmt.Fprintf(&b, "- [%s] %s (vs %s)\n", df.Category, df.Statement, df.VsAlternative)
	}
	b.WriteByte('\n')

	b.WriteString("## Proof points\n")
	for _, pp := range vendor.ProofPoints {
		fmt.Fprintf(&b, "- [%s] %s\n", pp.Type, pp.Content)
	}
	b.WriteByte('\n')

	if len(painPoints) > 0 {
		b.WriteString("## Prospect pain points\n")
		for _, p := range painPoints {
			fmt.Fprintf(&b, "- %s\n", p.Description)
		}
	}

	return b.String()
}

const summaryPrompt = `You are a B2B sales strategist writing the strategic layer of a sales playbook.

Respond with a JSON object:
{
  "executive_summary": "2-3 paragraphs: why this vendor should pursue this prospect, the wedge, and the expected objections",
  "priority_personas": ["persona titles from the identified list, most promising first"],
  "quick_wins": ["immediately actionable plays"],
  "success_metrics": {"metric name": "target"}
}

Use only persona titles that appear in the identified list. Respond with JSON only.`

const emailSequencePrompt = `You are a B2B outbound copywriter. Write a 4-touch, 14-day email sequence for the given persona, sending on days 1, 3, 7, and 14. Each email must reference the vendor material you are given; never invent claims.

Respond with a JSON object:
{
  "email_sequence": {
    "sequence_name": "...",
    "objective": "...",
    "total_days": 14,
    "touches": [
      {"touch_number": 1, "day": 1, "subject": "...", "body": "...", "call_to_action": "...", "personalization_notes": ["..."]},
      {"touch_number": 2, "day": 3, ...},
      {"touch_number": 3, "day": 7, ...},
      {"touch_number": 4, "day": 14, ...}
    ],
    "best_practices": ["..."]
  }
}

Respond with JSON only.`

const talkTrackPrompt = `You are a B2B sales enablement writer. Build the complete talk track for the given persona: elevator pitch, cold call script, discovery script, demo talking points, and a value mapping from their pains to vendor capabilities.

Respond with a JSON object:
{
  "talk_track": {
    "elevator_pitch": "...",
    "cold_call_script": {"script_type": "cold_call", "persona_title": "...", "opening": "...", "value_proposition": "...", "objection_responses": {"objection": "response"}, "closing": "...", "next_steps": ["..."]},
    "discovery_script": {"script_type": "discovery", "persona_title": "...", "opening": "...", "value_proposition": "...", "discovery_questions": [{"question": "...", "purpose": "...", "follow_up_questions": ["..."]}], "closing": "..."},
    "demo_talking_points": ["..."],
    "value_mapping": {"their pain": "vendor capability"}
  }
}

Respond with JSON only.`

const battleCardPrompt = `You are a B2B competitive strategist. Write battle cards for this deal: one why-we-win card, one objection-handling card, and competitive positioning cards where the differentiators name alternatives.

Respond with a JSON object:
{
  "battle_cards": [
    {
      "title": "...",
      "card_type": "why_we_win|objection_handling|competitive_positioning",
      "persona_focus": "...",
      "key_differentiators": ["..."],
      "proof_points": ["..."],
      "objection_responses": [{"objection": "...", "category": "price|timing|authority|need|competitor", "response_framework": "...", "talk_track": "...", "proof_points": ["..."]}],
      "competitive_positioning": [{"competitor_name": "...", "our_advantages": ["..."], "their_advantages": ["..."], "trap_setting_questions": ["..."]}]
    }
  ]
}

Respond with JSON only.`
