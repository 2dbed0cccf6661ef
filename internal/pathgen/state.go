package pathgen

import (
	"strings"

	"github.com/yungbote/roadmap-agent/internal/types"
)

// Pipeline stage labels, as surfaced in progress records.
const (
	StageAnalyzing  = "analyzing"
	StageGenerating = "generating"
	StageEnriching  = "enriching"
	StageCompleted  = "completed"
	StageError      = "error"
)

// State is the record threaded through the four stages. Each stage owns
// exactly one of the nullable fields (Analysis, Curriculum, Enriched,
// FinalPath) and sets it exactly once; nothing outside the run ever sees
// the state.
type State struct {
	UserID      string
	Topic       string
	Background  string
	GoalLevel   string
	Preferences types.Preferences
	TraceID     string

	Analysis   string
	Curriculum *types.Curriculum
	Enriched   []types.Module
	FinalPath  *types.LearningPath

	Progress int
	Stage    string
}

// NewState builds the initial state for one request, applying the goal-level
// default.
func NewState(req types.PathRequest) *State {
	goal := strings.TrimSpace(req.GoalLevel)
	if goal == "" {
		goal = types.DefaultGoalLevel
	}
	return &State{
		UserID:      req.UserID,
		Topic:       req.Topic,
		Background:  req.Background,
		GoalLevel:   goal,
		Preferences: req.Preferences,
		TraceID:     req.TraceID,
		Stage:       StageAnalyzing,
	}
}
