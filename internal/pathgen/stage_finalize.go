package pathgen

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/roadmap-agent/internal/types"
)

// finalizePath merges the enriched modules back into the curriculum and
// assembles the finished artifact. No model call; this stage cannot fail.
func (g *Generator) finalizePath(ctx context.Context, state *State) error {
	g.reporter.Report(ctx, StageCompleted,
		fmt.Sprintf("Your %s learning path is ready!", state.Topic), 100, nil)

	curriculum := *state.Curriculum
	curriculum.Modules = state.Enriched
	state.Curriculum = &curriculum

	state.FinalPath = &types.LearningPath{
		UserID:      state.UserID,
		Topic:       state.Topic,
		Background:  state.Background,
		GoalLevel:   state.GoalLevel,
		Preferences: state.Preferences,
		Analysis:    state.Analysis,
		Curriculum:  curriculum,
		CreatedAt:   time.Now().UTC(),
		TraceID:     state.TraceID,
	}
	state.Progress = 100
	state.Stage = StageCompleted

	g.log.Info("Learning path finalized", "topic", state.Topic, "modules", len(curriculum.Modules))
	return nil
}
