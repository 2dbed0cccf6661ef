package pathgen

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// enrichResources attaches recommended resources to every module. Modules
// keep their generation order regardless of how enrichment is scheduled:
// results are written back by index. A module whose resource JSON cannot be
// parsed gets an empty resource list and the run continues; a failed model
// call aborts the whole run.
func (g *Generator) enrichResources(ctx context.Context, state *State) error {
	g.reporter.Report(ctx, StageEnriching, "Finding the best learning resources...", 75, nil)

	modules := state.Curriculum.Modules
	total := len(modules)
	if total == 0 {
		// Nothing to interpolate over (fallback curricula have no
		// modules), so jump straight to the end of this stage's band.
		g.reporter.Report(ctx, StageEnriching, "No modules to enrich", 90, nil)
		state.Enriched = []types.Module{}
		state.Progress = 90
		state.Stage = StageEnriching
		return nil
	}

	enriched := make([]types.Module, total)
	if g.enrichConcurrency <= 1 {
		for i, module := range modules {
			resources, err := g.enrichModule(ctx, module, state.Preferences)
			if err != nil {
				return err
			}
			module.Resources = resources
			enriched[i] = module
			g.reporter.Report(ctx, StageEnriching,
				fmt.Sprintf("Enriched module %d/%d", i+1, total),
				enrichProgress(i+1, total), nil)
		}
	} else {
		// Bounded fan-out. Progress counts completions, not loop order.
		var done atomic.Int64
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.enrichConcurrency)
		for i, module := range modules {
			eg.Go(func() error {
				resources, err := g.enrichModule(egCtx, module, state.Preferences)
				if err != nil {
					return err
				}
				module.Resources = resources
				enriched[i] = module
				n := int(done.Add(1))
				g.reporter.Report(egCtx, StageEnriching,
					fmt.Sprintf("Enriched %d/%d modules", n, total),
					enrichProgress(n, total), nil)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}

	state.Enriched = enriched
	state.Progress = 90
	state.Stage = StageEnriching

	g.log.Info("Resources enriched", "modules", total, "topic", state.Topic)
	return nil
}

// enrichProgress interpolates between 75 and 90 by completed module count.
func enrichProgress(done, total int) int {
	return 75 + int(float64(done)/float64(total)*15)
}

func (g *Generator) enrichModule(ctx context.Context, module types.Module, prefs types.Preferences) ([]types.Resource, error) {
	content, err := g.ai.Chat(ctx, []services.AIMessage{
		{Role: "system", Content: systemResourceCurator},
		{Role: "user", Content: resourcesPrompt(module, prefs)},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Resources []types.Resource `json:"resources"`
	}
	if err := services.ExtractJSON(content, &parsed); err != nil {
		g.log.Warn("Failed to parse module resources, leaving empty", "module", module.Title, "error", err)
		return []types.Resource{}, nil
	}
	if parsed.Resources == nil {
		parsed.Resources = []types.Resource{}
	}
	return parsed.Resources, nil
}
