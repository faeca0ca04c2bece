package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
	"github.com/orchidautomation/playbook-cli/pkg/firecrawl"
)

// batchScrapeStage fetches every prioritized page in one Firecrawl batch job
// and partitions the results by side. The vendor extraction and prospect
// analysis groups both read from this stage, so a failure here halts the run.
func batchScrapeStage(d *Deps) *workflow.Stage {
	return &workflow.Stage{
		Name:  StageBatchScrape,
		Needs: []string{StagePrioritizeURLs},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			sel, err := workflow.Need[model.URLSelection](rs, StagePrioritizeURLs)
			if err != nil {
				return nil, err
			}

			vendorSel, prospectSel := applyScrapeBudget(sel, d.Config.Pipeline.MaxURLsToScrape)

			urls := append(model.URLs(vendorSel), model.URLs(prospectSel)...)
			if len(urls) == 0 {
				return nil, workflow.ShapeMismatchErr(StageBatchScrape+": no urls to scrape", nil)
			}

			scrapeCtx, cancel := d.scrapeCtx(ctx)
			defer cancel()

			start, err := fetch(scrapeCtx, d, StageBatchScrape, func(ctx context.Context) (*firecrawl.BatchScrapeResponse, error) {
				return d.Fetcher.BatchScrape(ctx, firecrawl.BatchScrapeRequest{
					URLs:    urls,
					Formats: []string{"markdown"},
				})
			})
			if err != nil {
				return nil, workflow.CollaboratorErr("firecrawl batch scrape failed to start", err)
			}

			status, err := firecrawl.PollBatchScrape(scrapeCtx, d.Fetcher, start.ID,
				firecrawl.WithPollTimeout(time.Duration(d.Config.Pipeline.BatchScrapeTimeoutSecs)*time.Second))
			if err != nil {
				return nil, workflow.CollaboratorErr("firecrawl batch scrape did not complete", err)
			}

			content := partitionPages(status.Data, vendorSel, prospectSel)
			if len(content.Vendor) == 0 && len(content.Prospect) == 0 {
				return nil, workflow.CollaboratorErr(StageBatchScrape+": batch returned no usable pages", nil)
			}

			zap.L().Info("batch scrape complete",
				zap.Int("requested", len(urls)),
				zap.Int("vendor_pages", len(content.Vendor)),
				zap.Int("prospect_pages", len(content.Prospect)))
			return content, nil
		},
	}
}

// applyScrapeBudget trims both selections proportionally so the combined
// batch stays within the page budget. Each non-empty side keeps at least one
// page.
func applyScrapeBudget(sel model.URLSelection, max int) (vendor, prospect []model.SelectedURL) {
	vendor, prospect = sel.Vendor, sel.Prospect
	total := len(vendor) + len(prospect)
	if max <= 0 || total <= max {
		return vendor, prospect
	}

	vq := max * len(vendor) / total
	if vq == 0 && len(vendor) > 0 {
		vq = 1
	}
	pq := max - vq
	if pq == 0 && len(prospect) > 0 {
		pq = 1
		if vq > 1 {
			vq--
		}
	}

	if len(vendor) > vq {
		vendor = vendor[:vq]
	}
	if len(prospect) > pq {
		prospect = prospect[:pq]
	}
	return vendor, prospect
}

// partitionPages assigns each scraped page back to the side that requested
// it, carrying the prioritizer's predicted page type. Pages with no markdown
// are dropped.
func partitionPages(pages []firecrawl.PageData, vendorSel, prospectSel []model.SelectedURL) model.ScrapedContent {
	vendorTypes := pageTypeIndex(vendorSel)
	prospectTypes := pageTypeIndex(prospectSel)

	content := model.ScrapedContent{
		Vendor:   make(map[string]model.PageText),
		Prospect: make(map[string]model.PageText),
	}
	for _, p := range pages {
		if strings.TrimSpace(p.Markdown) == "" {
			continue
		}
		url := p.Source()
		if pt, ok := vendorTypes[url]; ok {
			content.Vendor[url] = model.PageText{URL: url, PageType: pt, Markdown: p.Markdown}
		} else if pt, ok := prospectTypes[url]; ok {
			content.Prospect[url] = model.PageText{URL: url, PageType: pt, Markdown: p.Markdown}
		}
	}
	return content
}

func pageTypeIndex(sel []model.SelectedURL) map[string]string {
	idx := make(map[string]string, len(sel))
	for _, s := range sel {
		idx[s.URL] = s.PageType
	}
	return idx
}
