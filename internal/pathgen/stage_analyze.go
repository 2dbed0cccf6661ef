package pathgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/roadmap-agent/internal/services"
)

// analyzeBackground asks the model for a short free-text read of what the
// user knows and what gaps the path should fill. A model failure here
// aborts the run; there is nothing sensible to fall back to.
func (g *Generator) analyzeBackground(ctx context.Context, state *State) error {
	g.reporter.Report(ctx, StageAnalyzing,
		fmt.Sprintf("Analyzing your background for %s...", state.Topic), 15, nil)

	content, err := g.ai.Chat(ctx, []services.AIMessage{
		{Role: "system", Content: systemCurriculumDesigner},
		{Role: "user", Content: analysisPrompt(state)},
	})
	if err != nil {
		return err
	}

	state.Analysis = strings.TrimSpace(content)
	state.Progress = 20
	state.Stage = StageAnalyzing

	g.log.Info("Background analysis completed", "topic", state.Topic)
	return nil
}
