package pathgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

const analysisText = "You already know C, so the memory model transfers. Focus on ownership and lifetimes. A project-driven approach works best."

const curriculumJSON = `{
  "title": "Advanced Rust for C Developers",
  "description": "From manual memory management to ownership",
  "total_hours": 24,
  "modules": [
    {"order": 1, "title": "Ownership and Borrowing", "description": "Core memory model", "objectives": ["explain ownership", "use borrows"], "key_concepts": ["ownership", "borrowing"], "estimated_hours": 6, "prerequisites": []},
    {"order": 2, "title": "Traits and Generics", "description": "Abstraction without overhead", "objectives": ["define traits"], "key_concepts": ["traits", "generics"], "estimated_hours": 8, "prerequisites": ["Ownership and Borrowing"]}
  ]
}`

const resourcesJSON = `{"resources": [{"type": "video", "title": "Ownership Explained", "description": "Walkthrough", "url": "https://example.com/v", "duration": "30 min", "difficulty": "intermediate"}]}`

// stubAI replays canned responses in call order, optionally failing at a
// fixed call index. A custom fn overrides the canned sequence.
type stubAI struct {
	mu        sync.Mutex
	responses []string
	errAt     int // 1-based call index that fails; 0 = never
	calls     int
	fn        func(call int, messages []services.AIMessage) (string, error)
}

func (s *stubAI) Chat(ctx context.Context, messages []services.AIMessage) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if s.fn != nil {
		return s.fn(call, messages)
	}
	if s.errAt != 0 && call == s.errAt {
		return "", errors.New("model unavailable")
	}
	idx := call - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *stubAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSink struct {
	mu      sync.Mutex
	updates []types.ProgressUpdate
}

func (r *recordingSink) Set(ctx context.Context, traceID string, update types.ProgressUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
	return nil
}

func (r *recordingSink) all() []types.ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.ProgressUpdate, len(r.updates))
	copy(out, r.updates)
	return out
}

func newTestGenerator(ai services.AIClient, sink services.ProgressSink, opts Options) *Generator {
	reporter := services.NewProgressReporter(testLogger(), sink, "t1")
	return NewGenerator(testLogger(), ai, reporter, opts)
}

func testRequest() types.PathRequest {
	return types.PathRequest{
		UserID:     "u1",
		Topic:      "Rust",
		Background: "knows C",
		GoalLevel:  "advanced",
		TraceID:    "t1",
	}
}

func TestRunSuccess(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON, resourcesJSON}}
	sink := &recordingSink{}
	gen := newTestGenerator(ai, sink, Options{})

	state := NewState(testRequest())
	path, err := gen.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path.TraceID != "t1" {
		t.Fatalf("trace id not echoed: %q", path.TraceID)
	}
	if path.GoalLevel != "advanced" {
		t.Fatalf("goal level lost: %q", path.GoalLevel)
	}
	if path.Analysis != analysisText {
		t.Fatalf("analysis not carried: %q", path.Analysis)
	}
	if len(path.Curriculum.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(path.Curriculum.Modules))
	}
	for i, m := range path.Curriculum.Modules {
		if len(m.Resources) != 1 {
			t.Fatalf("module %d missing resources: %+v", i, m)
		}
	}
	if path.CreatedAt.IsZero() {
		t.Fatalf("createdAt not set")
	}
	if ai.callCount() != 4 {
		t.Fatalf("expected 4 model calls, got %d", ai.callCount())
	}

	if state.Progress != 100 || state.Stage != StageCompleted {
		t.Fatalf("terminal state wrong: progress=%d stage=%q", state.Progress, state.Stage)
	}

	updates := sink.all()
	if len(updates) == 0 {
		t.Fatalf("no progress observed")
	}
	last := 0
	for _, u := range updates {
		if u.Progress < last {
			t.Fatalf("progress went backwards: %v", updates)
		}
		last = u.Progress
	}
	if last != 100 {
		t.Fatalf("final progress %d, want 100", last)
	}
}

func TestRunFencedCurriculum(t *testing.T) {
	fenced := "```json\n" + curriculumJSON + "\n```"
	ai := &stubAI{responses: []string{analysisText, fenced, resourcesJSON, resourcesJSON}}
	gen := newTestGenerator(ai, &recordingSink{}, Options{})

	path, err := gen.Run(context.Background(), NewState(testRequest()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Curriculum.Title != "Advanced Rust for C Developers" {
		t.Fatalf("fenced curriculum not parsed: %q", path.Curriculum.Title)
	}
	if len(path.Curriculum.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(path.Curriculum.Modules))
	}
}

func TestRunCurriculumFallback(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, "Sure! Here is a curriculum outline: 1) basics 2) advanced"}}
	sink := &recordingSink{}
	gen := newTestGenerator(ai, sink, Options{})

	path, err := gen.Run(context.Background(), NewState(testRequest()))
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if path.Curriculum.Title != "Learning Path: Rust" {
		t.Fatalf("fallback title wrong: %q", path.Curriculum.Title)
	}
	if path.Curriculum.Description != analysisText {
		t.Fatalf("fallback description should be the analysis")
	}
	if path.Curriculum.TotalHours != 30 {
		t.Fatalf("fallback hours wrong: %v", path.Curriculum.TotalHours)
	}
	if len(path.Curriculum.Modules) != 0 {
		t.Fatalf("fallback should carry no modules")
	}
	// No modules means no enrichment calls.
	if ai.callCount() != 2 {
		t.Fatalf("expected 2 model calls, got %d", ai.callCount())
	}

	updates := sink.all()
	if updates[len(updates)-1].Progress != 100 {
		t.Fatalf("degraded run must still complete at 100")
	}
}

func TestRunEnrichParseFailureContinues(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, "resources: plenty on youtube", resourcesJSON}}
	gen := newTestGenerator(ai, &recordingSink{}, Options{})

	path, err := gen.Run(context.Background(), NewState(testRequest()))
	if err != nil {
		t.Fatalf("enrichment parse failure must not abort: %v", err)
	}
	mods := path.Curriculum.Modules
	if mods[0].Resources == nil || len(mods[0].Resources) != 0 {
		t.Fatalf("module 1 should have an empty resource list, got %+v", mods[0].Resources)
	}
	if len(mods[1].Resources) != 1 {
		t.Fatalf("module 2 should still be enriched, got %+v", mods[1].Resources)
	}
}

func TestRunModelErrorAborts(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON}, errAt: 2}
	gen := newTestGenerator(ai, &recordingSink{}, Options{})

	state := NewState(testRequest())
	if _, err := gen.Run(context.Background(), state); err == nil {
		t.Fatalf("expected model-call error to propagate")
	}
	if state.Curriculum != nil {
		t.Fatalf("failed stage must not set its output field")
	}
	if ai.callCount() != 2 {
		t.Fatalf("pipeline should stop at the failing stage, got %d calls", ai.callCount())
	}
}

func TestRunEnrichModelErrorAborts(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON}, errAt: 4}
	gen := newTestGenerator(ai, &recordingSink{}, Options{})

	if _, err := gen.Run(context.Background(), NewState(testRequest())); err == nil {
		t.Fatalf("expected enrichment model-call error to propagate")
	}
}

func TestRunEmptyModulesJumpsTo90(t *testing.T) {
	empty := `{"title": "Thin Path", "description": "d", "total_hours": 5, "modules": []}`
	ai := &stubAI{responses: []string{analysisText, empty}}
	sink := &recordingSink{}
	gen := newTestGenerator(ai, sink, Options{})

	if _, err := gen.Run(context.Background(), NewState(testRequest())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen90 := false
	for _, u := range sink.all() {
		if u.Stage == StageEnriching && u.Progress == 90 {
			seen90 = true
		}
	}
	if !seen90 {
		t.Fatalf("empty-module enrichment should report 90 directly: %+v", sink.all())
	}
}

func TestRunPreservesModuleOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"title": "Big Path", "description": "d", "total_hours": 40, "modules": [`)
	for i := 0; i < 5; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"order": %d, "title": "Module %d", "description": "d", "objectives": [], "key_concepts": [], "estimated_hours": 4, "prerequisites": []}`, i+1, i+1)
	}
	sb.WriteString(`]}`)

	ai := &stubAI{fn: func(call int, messages []services.AIMessage) (string, error) {
		switch call {
		case 1:
			return analysisText, nil
		case 2:
			return sb.String(), nil
		default:
			return resourcesJSON, nil
		}
	}}
	gen := newTestGenerator(ai, &recordingSink{}, Options{})

	path, err := gen.Run(context.Background(), NewState(testRequest()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, m := range path.Curriculum.Modules {
		if m.Order != i+1 {
			t.Fatalf("module order not preserved at %d: %+v", i, m)
		}
		if len(m.Resources) != 1 {
			t.Fatalf("module %d not enriched", i)
		}
	}
}

func TestRunParallelEnrichmentPreservesOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"title": "Big Path", "description": "d", "total_hours": 40, "modules": [`)
	for i := 0; i < 6; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"order": %d, "title": "Module %d", "description": "d", "objectives": [], "key_concepts": [], "estimated_hours": 4, "prerequisites": []}`, i+1, i+1)
	}
	sb.WriteString(`]}`)

	ai := &stubAI{fn: func(call int, messages []services.AIMessage) (string, error) {
		switch call {
		case 1:
			return analysisText, nil
		case 2:
			return sb.String(), nil
		default:
			return resourcesJSON, nil
		}
	}}
	sink := &recordingSink{}
	gen := newTestGenerator(ai, sink, Options{EnrichConcurrency: 3})

	path, err := gen.Run(context.Background(), NewState(testRequest()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, m := range path.Curriculum.Modules {
		if m.Order != i+1 {
			t.Fatalf("parallel enrichment broke ordering at %d: %+v", i, m)
		}
	}
	last := 0
	for _, u := range sink.all() {
		if u.Progress < last {
			t.Fatalf("progress went backwards under concurrency")
		}
		last = u.Progress
	}
	if last != 100 {
		t.Fatalf("final progress %d, want 100", last)
	}
}

func TestEnrichProgressFormula(t *testing.T) {
	cases := []struct {
		done, total, want int
	}{
		{1, 4, 78},
		{2, 4, 82},
		{3, 4, 86},
		{4, 4, 90},
		{1, 1, 90},
		{1, 3, 80},
	}
	for _, c := range cases {
		if got := enrichProgress(c.done, c.total); got != c.want {
			t.Fatalf("enrichProgress(%d, %d) = %d, want %d", c.done, c.total, got, c.want)
		}
	}
}

func TestNewStateDefaults(t *testing.T) {
	req := testRequest()
	req.GoalLevel = "  "
	state := NewState(req)
	if state.GoalLevel != types.DefaultGoalLevel {
		t.Fatalf("goal level default not applied: %q", state.GoalLevel)
	}
	if state.Stage != StageAnalyzing || state.Progress != 0 {
		t.Fatalf("initial state wrong: %+v", state)
	}
	if !state.Preferences.Videos() || !state.Preferences.Articles() || !state.Preferences.Docs() {
		t.Fatalf("absent preference flags must default to true")
	}
}
