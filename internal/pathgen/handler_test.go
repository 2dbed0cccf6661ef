package pathgen

import (
	"context"
	"sync"
	"testing"

	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, event types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) all() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

type recordingRepo struct {
	mu    sync.Mutex
	paths []*types.LearningPath
	fail  error
}

func (r *recordingRepo) Create(ctx context.Context, path *types.LearningPath) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingRepo) GetByTraceID(ctx context.Context, traceID string) (*types.LearningPathRecord, error) {
	return nil, nil
}

func (r *recordingRepo) ListByUser(ctx context.Context, userID string) ([]*types.LearningPathRecord, error) {
	return nil, nil
}

type panicAI struct{}

func (panicAI) Chat(ctx context.Context, messages []services.AIMessage) (string, error) {
	panic("boom")
}

func TestHandleSuccessEmitsGenerated(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON, resourcesJSON}}
	sink := &recordingSink{}
	emitter := &recordingEmitter{}
	repo := &recordingRepo{}
	h := NewHandler(testLogger(), ai, sink, emitter, repo, 1)

	h.Handle(context.Background(), testRequest())

	events := emitter.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	evt := events[0]
	if evt.Topic != types.TopicPathGenerated {
		t.Fatalf("wrong topic: %q", evt.Topic)
	}
	if evt.Data["traceId"] != "t1" || evt.Data["userId"] != "u1" {
		t.Fatalf("event data wrong: %+v", evt.Data)
	}
	path, ok := evt.Data["learningPath"].(*types.LearningPath)
	if !ok || path == nil {
		t.Fatalf("learningPath missing from event: %+v", evt.Data)
	}
	if len(path.Curriculum.Modules) != 2 {
		t.Fatalf("expected 2 modules in emitted path")
	}
	if _, ok := evt.Data["completedAt"]; !ok {
		t.Fatalf("completedAt missing")
	}

	if len(repo.paths) != 1 {
		t.Fatalf("path not persisted")
	}
}

func TestHandleFailureEmitsFailedAndErrorRecord(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText}, errAt: 2}
	sink := &recordingSink{}
	emitter := &recordingEmitter{}
	h := NewHandler(testLogger(), ai, sink, emitter, nil, 1)

	h.Handle(context.Background(), testRequest())

	events := emitter.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	if events[0].Topic != types.TopicPathFailed {
		t.Fatalf("wrong topic: %q", events[0].Topic)
	}
	if events[0].Data["error"] == "" || events[0].Data["error"] == nil {
		t.Fatalf("failed event missing error message: %+v", events[0].Data)
	}

	updates := sink.all()
	last := updates[len(updates)-1]
	if last.Stage != StageError || last.Progress != 0 {
		t.Fatalf("last sink record should be the error record, got %+v", last)
	}
}

func TestHandleRecoversPanics(t *testing.T) {
	emitter := &recordingEmitter{}
	h := NewHandler(testLogger(), panicAI{}, &recordingSink{}, emitter, nil, 1)

	// Must not panic past the handler boundary.
	h.Handle(context.Background(), testRequest())

	events := emitter.all()
	if len(events) != 1 || events[0].Topic != types.TopicPathFailed {
		t.Fatalf("panic should surface as a failed event: %+v", events)
	}
}

func TestHandlePersistFailureStillSucceeds(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON, resourcesJSON}}
	emitter := &recordingEmitter{}
	repo := &recordingRepo{fail: context.DeadlineExceeded}
	h := NewHandler(testLogger(), ai, &recordingSink{}, emitter, repo, 1)

	h.Handle(context.Background(), testRequest())

	events := emitter.all()
	if len(events) != 1 || events[0].Topic != types.TopicPathGenerated {
		t.Fatalf("persist failure must not fail the run: %+v", events)
	}
}

func TestHandleWithoutOptionalCollaborators(t *testing.T) {
	ai := &stubAI{responses: []string{analysisText, curriculumJSON, resourcesJSON, resourcesJSON}}
	h := NewHandler(testLogger(), ai, nil, nil, nil, 1)

	// No sink, no emitter, no repo: the run should still complete quietly.
	h.Handle(context.Background(), testRequest())
}
