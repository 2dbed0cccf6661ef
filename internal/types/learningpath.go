package types

import "time"

// DefaultGoalLevel is applied when a request leaves goalLevel blank. Goal
// levels are an open set of difficulty labels and are never validated
// against an enum.
const DefaultGoalLevel = "intermediate"

// Resource types recognized by the resource curation prompt.
const (
	ResourceVideo         = "video"
	ResourceArticle       = "article"
	ResourceDocumentation = "documentation"
)

// Preferences carries the optional resource-type flags from the request.
// A nil flag means "include it" - absence defaults to true.
type Preferences struct {
	IncludeVideos   *bool `json:"includeVideos,omitempty"`
	IncludeArticles *bool `json:"includeArticles,omitempty"`
	IncludeDocs     *bool `json:"includeDocs,omitempty"`
}

func (p Preferences) Videos() bool   { return p.IncludeVideos == nil || *p.IncludeVideos }
func (p Preferences) Articles() bool { return p.IncludeArticles == nil || *p.IncludeArticles }
func (p Preferences) Docs() bool     { return p.IncludeDocs == nil || *p.IncludeDocs }

// PathRequest is the inbound learning.path.requested payload.
type PathRequest struct {
	UserID      string      `json:"userId"`
	Topic       string      `json:"topic"`
	Background  string      `json:"background"`
	GoalLevel   string      `json:"goalLevel"`
	Preferences Preferences `json:"preferences"`
	TraceID     string      `json:"traceId"`
}

// Resource is one recommended learning resource attached to a module.
type Resource struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
}

// Module is one unit of the generated curriculum. Resources stay nil until
// the enrichment stage runs.
type Module struct {
	Order          int        `json:"order"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Objectives     []string   `json:"objectives"`
	KeyConcepts    []string   `json:"key_concepts"`
	EstimatedHours float64    `json:"estimated_hours"`
	Prerequisites  []string   `json:"prerequisites"`
	Resources      []Resource `json:"resources,omitempty"`
}

// Curriculum is the structured output of the generation stage.
type Curriculum struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TotalHours  float64  `json:"total_hours"`
	Modules     []Module `json:"modules"`
}

// LearningPath is the finished artifact assembled by the finalize stage.
type LearningPath struct {
	UserID      string      `json:"userId"`
	Topic       string      `json:"topic"`
	Background  string      `json:"background"`
	GoalLevel   string      `json:"goalLevel"`
	Preferences Preferences `json:"preferences"`
	Analysis    string      `json:"analysis"`
	Curriculum  Curriculum  `json:"curriculum"`
	CreatedAt   time.Time   `json:"createdAt"`
	TraceID     string      `json:"traceId"`
}

// ProgressUpdate is the record upserted into the progress sink, keyed by
// trace id. Last write wins; no history is retained.
type ProgressUpdate struct {
	Stage     string         `json:"stage"`
	Message   string         `json:"message"`
	Progress  int            `json:"progress"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}
