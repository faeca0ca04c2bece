package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
	"github.com/orchidautomation/playbook-cli/pkg/firecrawl"
)

const homepagePromptCap = 30000

// homepageScrapeGroup fetches both homepages in parallel. Homepages are
// scraped early, independent of site mapping, so a thin site map does not
// block the prioritizer from having company context.
func homepageScrapeGroup(d *Deps) *workflow.ParallelGroup {
	return &workflow.ParallelGroup{
		Name: GroupHomepageScrape,
		Members: []*workflow.Stage{
			scrapeHomeStage(d, StageScrapeVendor, model.SideVendor),
			scrapeHomeStage(d, StageScrapeProspect, model.SideProspect),
		},
	}
}

func scrapeHomeStage(d *Deps, name string, side model.Side) *workflow.Stage {
	return &workflow.Stage{
		Name:  name,
		Needs: []string{workflow.InputKey},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			input, err := workflow.Need[model.RunInput](rs, workflow.InputKey)
			if err != nil {
				return nil, err
			}
			domain := domainFor(input, side)

			resp, err := fetch(ctx, d, name, func(ctx context.Context) (*firecrawl.ScrapeResponse, error) {
				return d.Fetcher.Scrape(ctx, firecrawl.ScrapeRequest{
					URL:     domain,
					Formats: []string{"markdown"},
					Timeout: d.Config.Firecrawl.ScrapeTimeoutMS,
				})
			})
			if err != nil {
				return nil, workflow.CollaboratorErr("firecrawl scrape failed for "+domain, err)
			}

			min := d.Config.Pipeline.MinHomepageChars
			if len(resp.Data.Markdown) < min {
				return nil, workflow.CollaboratorErr(
					fmt.Sprintf("homepage content for %s below %d chars", domain, min),
					eris.Errorf("got %d chars", len(resp.Data.Markdown)))
			}

			zap.L().Info("homepage scraped",
				zap.String("side", string(side)),
				zap.String("domain", domain),
				zap.Int("chars", len(resp.Data.Markdown)))

			return model.HomepageContent{
				Domain:   domain,
				URL:      resp.Data.Source(),
				Markdown: resp.Data.Markdown,
				Title:    resp.Data.Metadata.Title,
			}, nil
		},
	}
}

// homepageAnalysisGroup distills each homepage into structured company
// context for the URL prioritizer.
func homepageAnalysisGroup(d *Deps) *workflow.ParallelGroup {
	return &workflow.ParallelGroup{
		Name: GroupHomepageAnalyze,
		Members: []*workflow.Stage{
			analyzeHomeStage(d, StageAnalyzeVendor, StageScrapeVendor, model.SideVendor),
			analyzeHomeStage(d, StageAnalyzeProspect, StageScrapeProspect, model.SideProspect),
		},
	}
}

func analyzeHomeStage(d *Deps, name, upstream string, side model.Side) *workflow.Stage {
	return &workflow.Stage{
		Name:  name,
		Needs: []string{upstream},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			home, err := workflow.Need[model.HomepageContent](rs, upstream)
			if err != nil {
				return nil, err
			}

			system := systemText(homepageAnalystPrompt)
			user := fmt.Sprintf("Company homepage (%s):\n\n%s",
				home.Domain, truncate(home.Markdown, homepagePromptCap))

			text, err := d.complete(ctx, name, system, user)
			if err != nil {
				return nil, err
			}
			analysis, err := decodeReply[model.HomepageAnalysis](name, text)
			if err != nil {
				return nil, err
			}
			if analysis.CompanyName == "" {
				analysis.CompanyName = model.Hostname(home.Domain)
			}

			zap.L().Info("homepage analyzed",
				zap.String("side", string(side)),
				zap.String("company", analysis.CompanyName))
			return analysis, nil
		},
	}
}

const homepageAnalystPrompt = `You are a B2B go-to-market analyst. Read the company homepage you are given and summarize the company.

Respond with a JSON object with these keys:
- "company_name": the company's name
- "what_they_do": one or two sentences on what the company does
- "target_audiences": array of audience segments they sell to
- "key_products": array of named products or services
- "page_hints": array of site sections worth reading for deeper research (e.g. "case studies", "pricing", "about")

Respond with JSON only.`
