package pathgen

import (
	"context"
	"fmt"

	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// fallbackTotalHours is used when the model output cannot be parsed and the
// curriculum has to be synthesized from the analysis alone.
const fallbackTotalHours = 30

// generateCurriculum asks the model for the module structure as JSON. A
// parse failure is a degraded success: the run continues with a fallback
// curriculum built from the analysis, carrying no modules. Only the model
// call itself can abort this stage.
func (g *Generator) generateCurriculum(ctx context.Context, state *State) error {
	g.reporter.Report(ctx, StageGenerating,
		fmt.Sprintf("Creating curriculum structure for %s...", state.Topic), 40, nil)

	content, err := g.ai.Chat(ctx, []services.AIMessage{
		{Role: "system", Content: systemJSONDesigner},
		{Role: "user", Content: curriculumPrompt(state)},
	})
	if err != nil {
		return err
	}

	var curriculum types.Curriculum
	if err := services.ExtractJSON(content, &curriculum); err != nil {
		g.log.Error("Failed to parse curriculum JSON, using fallback", "error", err)
		curriculum = types.Curriculum{
			Title:       "Learning Path: " + state.Topic,
			Description: state.Analysis,
			TotalHours:  fallbackTotalHours,
			Modules:     []types.Module{},
		}
	}

	state.Curriculum = &curriculum
	state.Progress = 60
	state.Stage = StageGenerating

	g.log.Info("Curriculum structure generated", "modules", len(curriculum.Modules), "topic", state.Topic)
	return nil
}
