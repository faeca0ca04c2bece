package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
)

// prioritizeStage asks the model to pick the pages worth scraping from each
// site map. Everything downstream scrapes only what this stage selects, so
// a failure here halts the run.
func prioritizeStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StagePrioritizeURLs,
		Needs: []string{StageMapVendor, StageMapProspect},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			vendorMap, err := workflow.Need[model.SiteMap](rs, StageMapVendor)
			if err != nil {
				return nil, err
			}
			prospectMap, err := workflow.Need[model.SiteMap](rs, StageMapProspect)
			if err != nil {
				return nil, err
			}

			// Homepage analyses are context, not requirements.
			vendorCtx := workflow.Optional[model.HomepageAnalysis](rs, StageAnalyzeVendor)
			prospectCtx := workflow.Optional[model.HomepageAnalysis](rs, StageAnalyzeProspect)

			limit := d.Config.Pipeline.MaxURLsForPrioritization
			user := prioritizerInput(vendorMap, prospectMap, vendorCtx, prospectCtx, limit)

			text, err := d.complete(ctx, StagePrioritizeURLs, systemText(prioritizerPrompt), user)
			if err != nil {
				return nil, err
			}
			sel, err := decodeReply[model.URLSelection](StagePrioritizeURLs, text)
			if err != nil {
				return nil, err
			}
			if len(sel.Vendor) == 0 && len(sel.Prospect) == 0 {
				return nil, workflow.ShapeMismatchErr(
					StagePrioritizeURLs+": model selected no urls", nil)
			}

			zap.L().Info("urls prioritized",
				zap.Int("vendor_selected", len(sel.Vendor)),
				zap.Int("prospect_selected", len(sel.Prospect)))
			return sel, nil
		},
	}
}

func prioritizerInput(vendor, prospect model.SiteMap, vendorCtx, prospectCtx model.HomepageAnalysis, limit int) string {
	var b strings.Builder

	writeSide := func(label string, sm model.SiteMap, hc model.HomepageAnalysis) {
		fmt.Fprintf(&b, "## %s: %s\n", label, sm.Domain)
		if hc.CompanyName != "" {
			fmt.Fprintf(&b, "Company: %s. %s\n", hc.CompanyName, hc.WhatTheyDo)
		}
		if len(hc.PageHints) > 0 {
			fmt.Fprintf(&b, "Sections worth reading: %s\n", strings.Join(hc.PageHints, ", "))
		}
		urls := sm.URLs
		if limit > 0 && len(urls) > limit {
			fmt.Fprintf(&b, "Showing first %d of %d discovered URLs.\n", limit, len(urls))
			urls = urls[:limit]
		}
		for _, u := range urls {
			b.WriteString(u)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	writeSide("Vendor (the seller)", vendor, vendorCtx)
	writeSide("Prospect (the target account)", prospect, prospectCtx)
	return b.String()
}

const prioritizerPrompt = `You are a B2B sales researcher selecting which website pages to read in depth.

From each company's URL list, select the 10-15 pages most useful for building a sales playbook. For the vendor prefer: products, pricing, case studies, customers, about, solutions, comparisons. For the prospect prefer: about, products, careers, news, blog posts describing their operations and challenges. Skip legal pages, login pages, and paginated archives.

For every selected URL assign a page_type from: product, pricing, case_study, customers, about, solutions, blog, news, careers, other.

Respond with a JSON object:
{
  "vendor_selected_urls": [{"url": "...", "page_type": "...", "reason": "..."}],
  "prospect_selected_urls": [{"url": "...", "page_type": "...", "reason": "..."}]
}

Select only URLs that appear in the lists. Respond with JSON only.`
