package pathgen

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/repos"
	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// Handler is the fail-safe boundary around one pipeline run: it builds the
// initial state, runs the generator, and converts every outcome into
// exactly one outbound event. Nothing escapes Handle, panics included.
type Handler struct {
	log     *logger.Logger
	ai      services.AIClient
	sink    services.ProgressSink
	emitter services.EventEmitter
	repo    repos.LearningPathRepo

	enrichConcurrency int
}

// NewHandler wires the collaborators. Sink, emitter and repo are optional;
// a missing one turns its effect into a no-op.
func NewHandler(log *logger.Logger, ai services.AIClient, sink services.ProgressSink, emitter services.EventEmitter, repo repos.LearningPathRepo, enrichConcurrency int) *Handler {
	return &Handler{
		log:               log.With("component", "LearningPathHandler"),
		ai:                ai,
		sink:              sink,
		emitter:           emitter,
		repo:              repo,
		enrichConcurrency: enrichConcurrency,
	}
}

// Handle processes one learning.path.requested payload end to end.
func (h *Handler) Handle(ctx context.Context, req types.PathRequest) {
	log := h.log.With("trace_id", req.TraceID, "topic", req.Topic)
	log.Info("Learning path generation requested", "goal_level", req.GoalLevel)

	path, err := h.generate(ctx, req)
	if err != nil {
		log.Error("Learning path generation failed", "error", err)
		h.reportFailure(ctx, req, err)
		return
	}

	if h.repo != nil {
		if err := h.repo.Create(ctx, path); err != nil {
			// Persistence is a collaborator concern; the path still
			// reaches the requester through the event.
			log.Warn("Failed to persist learning path", "error", err)
		}
	}

	h.emit(ctx, types.Event{
		Topic: types.TopicPathGenerated,
		Data: map[string]any{
			"userId":       req.UserID,
			"topic":        req.Topic,
			"learningPath": path,
			"traceId":      req.TraceID,
			"completedAt":  time.Now().UnixMilli(),
		},
	})
	log.Info("Learning path generation completed")
}

// generate runs the pipeline, turning a stage panic into an error so the
// caller sees a single failure path.
func (h *Handler) generate(ctx context.Context, req types.PathRequest) (path *types.LearningPath, err error) {
	defer func() {
		if r := recover(); r != nil {
			path = nil
			err = fmt.Errorf("panic during generation: %v", r)
		}
	}()

	reporter := services.NewProgressReporter(h.log, h.sink, req.TraceID)
	gen := NewGenerator(h.log, h.ai, reporter, Options{EnrichConcurrency: h.enrichConcurrency})
	return gen.Run(ctx, NewState(req))
}

func (h *Handler) reportFailure(ctx context.Context, req types.PathRequest, genErr error) {
	if h.sink != nil && req.TraceID != "" {
		update := types.ProgressUpdate{
			Stage:     StageError,
			Message:   fmt.Sprintf("Failed to generate learning path: %v", genErr),
			Progress:  0,
			Timestamp: time.Now().UnixMilli(),
		}
		if err := h.sink.Set(ctx, req.TraceID, update); err != nil {
			h.log.Warn("Failed to write error progress record", "trace_id", req.TraceID, "error", err)
		}
	}

	h.emit(ctx, types.Event{
		Topic: types.TopicPathFailed,
		Data: map[string]any{
			"userId":  req.UserID,
			"topic":   req.Topic,
			"error":   genErr.Error(),
			"traceId": req.TraceID,
		},
	})
}

func (h *Handler) emit(ctx context.Context, event types.Event) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(ctx, event)
}
