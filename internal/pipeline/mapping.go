package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/workflow"
	"github.com/orchidautomation/playbook-cli/pkg/firecrawl"
)

// siteMappingGroup discovers the URL inventory of both domains in parallel.
func siteMappingGroup(d *Deps) *workflow.ParallelGroup {
	return &workflow.ParallelGroup{
		Name: GroupSiteMapping,
		Members: []*workflow.Stage{
			mapSideStage(d, StageMapVendor, model.SideVendor),
			mapSideStage(d, StageMapProspect, model.SideProspect),
		},
	}
}

func mapSideStage(d *Deps, name string, side model.Side) *workflow.Stage {
	return &workflow.Stage{
		Name:  name,
		Needs: []string{workflow.InputKey},
		Compute: func(ctx context.Context, rs *workflow.ResultStore) (any, error) {
			input, err := workflow.Need[model.RunInput](rs, workflow.InputKey)
			if err != nil {
				return nil, err
			}
			domain := domainFor(input, side)

			resp, err := fetch(ctx, d, name, func(ctx context.Context) (*firecrawl.MapResponse, error) {
				return d.Fetcher.Map(ctx, firecrawl.MapRequest{
					URL:   domain,
					Limit: d.Config.Pipeline.MaxURLsToMap,
				})
			})
			if err != nil {
				return nil, workflow.CollaboratorErr("firecrawl map failed for "+domain, err)
			}
			if len(resp.Links) == 0 {
				return nil, workflow.CollaboratorErr("no urls discovered for "+domain, errNoLinks)
			}

			zap.L().Info("site mapped",
				zap.String("side", string(side)),
				zap.String("domain", domain),
				zap.Int("urls", len(resp.Links)))

			return model.SiteMap{
				Domain:    domain,
				URLs:      resp.Links,
				TotalURLs: len(resp.Links),
			}, nil
		},
	}
}

func domainFor(input model.RunInput, side model.Side) string {
	if side == model.SideVendor {
		return input.VendorDomain
	}
	return input.ProspectDomain
}
